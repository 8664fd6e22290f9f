package session

import (
	"log/slog"

	"github.com/gotodo/todokit/pkg/broadcast"
	"github.com/gotodo/todokit/pkg/kv"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithStorage sets the backend sessions persist to. Defaults to kv.NewMemory().
func WithStorage(store kv.Storage) Option {
	return func(m *Manager) {
		m.storage = store
	}
}

func WithGateway(g Gateway) Option {
	return func(m *Manager) {
		m.gateway = g
	}
}

// WithBroadcaster publishes events on b instead of a Manager-owned
// broadcaster. The caller stays responsible for closing b.
func WithBroadcaster(b broadcast.Broadcaster[Event]) Option {
	return func(m *Manager) {
		m.events = b
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}
