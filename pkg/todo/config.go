package todo

// Config holds to-do store settings.
type Config struct {
	// IndexSize bounds the by-id lookup cache.
	IndexSize int `env:"TODO_INDEX_SIZE" envDefault:"128" yaml:"index_size"`
}

func DefaultConfig() Config {
	return Config{IndexSize: 128}
}
