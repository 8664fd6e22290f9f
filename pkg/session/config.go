package session

import "time"

// Config holds session configuration.
type Config struct {
	// TokenKey is the storage key of the bearer token.
	TokenKey string `env:"SESSION_TOKEN_KEY" envDefault:"auth_token" yaml:"token_key"`

	// UserKey is the storage key of the JSON-encoded user.
	UserKey string `env:"SESSION_USER_KEY" envDefault:"auth_user" yaml:"user_key"`

	// EventBuffer is the per-subscriber buffer of the default event broadcaster.
	EventBuffer int `env:"SESSION_EVENT_BUFFER" envDefault:"16" yaml:"event_buffer"`

	// RefreshTimeout bounds a shared refresh request.
	RefreshTimeout time.Duration `env:"SESSION_REFRESH_TIMEOUT" envDefault:"15s" yaml:"refresh_timeout"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		TokenKey:       "auth_token",
		UserKey:        "auth_user",
		EventBuffer:    16,
		RefreshTimeout: 15 * time.Second,
	}
}
