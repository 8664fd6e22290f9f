package kv

import (
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// File persists values as a single JSON object on local disk.
// Every mutation rewrites the whole document through a temp file and a
// rename, so readers never observe a partially written file.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile opens a file store at path. The parent directory is created if
// needed; the file itself is created on the first write.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, err
	}
	return &File{path: path}, nil
}

// Path returns the location of the backing document.
func (f *File) Path() string {
	return f.path
}

// Get returns the value for key. A document that cannot be decoded yields
// ErrCorrupted.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// SetMany merges values into the document and writes it back once.
func (f *File) SetMany(values map[string]string) error {
	if err := validateKeys(values); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil && !errors.Is(err, ErrCorrupted) {
		return err
	}
	maps.Copy(data, values)
	return f.save(data)
}

// Delete removes keys and writes the document back. A corrupted document is
// replaced by one without the deleted keys.
func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	corrupted := errors.Is(err, ErrCorrupted)
	if err != nil && !corrupted {
		return err
	}

	changed := corrupted
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save(data)
}

// load must be called with f.mu held. It always returns a usable map.
func (f *File) load() (map[string]string, error) {
	data := make(map[string]string)

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, err
	}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return make(map[string]string), errors.Join(ErrCorrupted, err)
	}
	return data, nil
}

// save must be called with f.mu held.
func (f *File) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kv-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}
