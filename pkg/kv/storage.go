package kv

// Storage is a synchronous string key/value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key. A missing key is reported
	// with ok=false and a nil error.
	Get(key string) (value string, ok bool, err error)

	// SetMany stores all values in a single logical write: either every
	// key is updated or none is.
	SetMany(values map[string]string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(keys ...string) error
}

// Set stores a single value.
func Set(s Storage, key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

func validateKeys(values map[string]string) error {
	for k := range values {
		if k == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
