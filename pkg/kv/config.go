package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Config selects and configures a storage backend.
type Config struct {
	// Driver is either "file" (default) or "memory".
	Driver string `env:"STORAGE_DRIVER" envDefault:"file" yaml:"driver"`

	// Path of the JSON document for the file driver. Empty means DefaultPath().
	Path string `env:"STORAGE_PATH" yaml:"path"`
}

// DefaultConfig returns the file driver at the default location.
func DefaultConfig() Config {
	return Config{Driver: DriverFile}
}

// DefaultPath returns the per-user storage location, falling back to the
// working directory when no user config dir is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".gotodo", "storage.json")
	}
	return filepath.Join(dir, "gotodo", "storage.json")
}

// Open builds the backend described by cfg.
func Open(cfg Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		path := cfg.Path
		if path == "" {
			path = DefaultPath()
		}
		return NewFile(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
