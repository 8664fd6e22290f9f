package session

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gotodo/todokit/pkg/kv"
	"github.com/gotodo/todokit/pkg/logger"
)

// Persistence keeps a Session in a kv.Storage under two keys: the token and
// the JSON-encoded user.
type Persistence struct {
	store    kv.Storage
	tokenKey string
	userKey  string
	log      *slog.Logger
}

// NewPersistence stores sessions in store under the keys named by cfg.
func NewPersistence(store kv.Storage, cfg Config, log *slog.Logger) *Persistence {
	def := DefaultConfig()
	if cfg.TokenKey == "" {
		cfg.TokenKey = def.TokenKey
	}
	if cfg.UserKey == "" {
		cfg.UserKey = def.UserKey
	}
	return &Persistence{
		store:    store,
		tokenKey: cfg.TokenKey,
		userKey:  cfg.UserKey,
		log:      logger.OrDiscard(log),
	}
}

// Read returns the stored session, or nil when none is stored. Partial or
// malformed entries count as no session and are erased. Errors are returned
// only for backend failures.
func (p *Persistence) Read() (*Session, error) {
	token, hasToken, err := p.store.Get(p.tokenKey)
	if err != nil {
		return nil, p.healOrFail(err)
	}
	rawUser, hasUser, err := p.store.Get(p.userKey)
	if err != nil {
		return nil, p.healOrFail(err)
	}

	switch {
	case !hasToken && !hasUser:
		return nil, nil
	case token == "":
		return nil, p.discard("missing token")
	case !hasUser:
		return nil, p.discard("missing user")
	}

	user, err := DecodeUser([]byte(rawUser))
	if err != nil {
		return nil, p.discard("malformed user")
	}
	return &Session{Token: token, User: user}, nil
}

// Write stores token and user in one batch.
func (p *Persistence) Write(s Session) error {
	raw, err := json.Marshal(s.User)
	if err != nil {
		return err
	}
	return p.store.SetMany(map[string]string{
		p.tokenKey: s.Token,
		p.userKey:  string(raw),
	})
}

// WriteUser replaces only the stored user.
func (p *Persistence) WriteUser(u User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return kv.Set(p.store, p.userKey, string(raw))
}

// Clear removes both keys whether or not they exist.
func (p *Persistence) Clear() error {
	return p.store.Delete(p.tokenKey, p.userKey)
}

func (p *Persistence) discard(reason string) error {
	p.log.Warn("discarding stored session",
		slog.String("reason", reason),
		logger.Key(p.tokenKey),
	)
	return p.Clear()
}

// A corrupted document is healed by clearing; other I/O errors propagate.
func (p *Persistence) healOrFail(err error) error {
	if !errors.Is(err, kv.ErrCorrupted) {
		return err
	}
	p.log.Warn("session storage corrupted, resetting", logger.Error(err))
	return p.Clear()
}
