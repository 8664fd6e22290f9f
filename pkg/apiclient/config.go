package apiclient

import "time"

// Config describes how to reach the goTodo API.
type Config struct {
	// BaseURL is the API root; endpoint paths are joined onto it.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080/api" yaml:"base_url"`

	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s" yaml:"timeout"`

	UserAgent string `env:"API_USER_AGENT" envDefault:"gotodo-cli" yaml:"user_agent"`
}

// DefaultConfig returns the local development API settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080/api",
		Timeout:   defaultTimeout,
		UserAgent: defaultUserAgent,
	}
}
