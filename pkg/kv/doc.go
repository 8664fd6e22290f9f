// Package kv provides the durable key/value storage used to persist the
// client session between runs.
//
// Two backends ship with the package:
//
//   - Memory: a mutex-guarded map for tests and throwaway runs
//   - File: a JSON document on local disk, rewritten atomically on every change
//
// Both implement Storage. Writes go through SetMany so that related keys (for
// example a token and the profile it belongs to) are updated together.
//
// # Usage
//
//	store, err := kv.Open(kv.Config{Driver: kv.DriverFile, Path: "/tmp/todo.json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = store.SetMany(map[string]string{"a": "1", "b": "2"})
//	v, ok, _ := store.Get("a")
//
// # Error Handling
//
//   - ErrEmptyKey      – write with an empty key
//   - ErrCorrupted     – the file document is not valid JSON; the next write replaces it
//   - ErrEmptyPath     – file store opened without a path
//   - ErrUnknownDriver – Open called with an unsupported driver
package kv
