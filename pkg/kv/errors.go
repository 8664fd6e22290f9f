package kv

import "errors"

var (
	// ErrEmptyKey is returned when a write uses an empty key.
	ErrEmptyKey = errors.New("kv.empty_key")

	// ErrCorrupted indicates the backing document could not be decoded.
	// The next successful write replaces it.
	ErrCorrupted = errors.New("kv.corrupted")

	// ErrEmptyPath is returned when a file store is opened without a path.
	ErrEmptyPath = errors.New("kv.empty_path")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("kv.unknown_driver")
)
