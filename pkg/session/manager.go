package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/gotodo/todokit/pkg/broadcast"
	"github.com/gotodo/todokit/pkg/kv"
	"github.com/gotodo/todokit/pkg/logger"
)

// Manager owns the authenticated session of the client. Token and user are
// always set and cleared together; Status is derived from them.
//
// The mutex guards fields and storage writes but is never held across a
// Gateway call, so concurrent operations are not serialized. Two racing
// logins resolve last-writer-wins. A clear bumps the generation, which
// makes any login, register or refresh that started earlier fail with
// ErrSessionSuperseded instead of resurrecting the session.
type Manager struct {
	mu         sync.RWMutex
	token      string
	user       User
	generation uint64

	config     Config
	storage    kv.Storage
	persist    *Persistence
	gateway    Gateway
	events     broadcast.Broadcaster[Event]
	ownsEvents bool
	flight     singleflight.Group
	log        *slog.Logger
}

// New creates an unauthenticated Manager. Call InitAuth to restore a
// persisted session.
func New(opts ...Option) *Manager {
	m := &Manager{config: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}

	m.log = logger.OrDiscard(m.log).With(logger.Component("session"))
	if m.config.RefreshTimeout <= 0 {
		m.config.RefreshTimeout = DefaultConfig().RefreshTimeout
	}
	if m.storage == nil {
		m.storage = kv.NewMemory()
	}
	if m.events == nil {
		m.events = broadcast.NewMemoryBroadcaster[Event](m.config.EventBuffer)
		m.ownsEvents = true
	}
	m.persist = NewPersistence(m.storage, m.config, m.log)
	return m
}

// NewFromConfig creates a Manager from cfg plus any further options.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

// Close releases the event broadcaster if the Manager created it.
func (m *Manager) Close() error {
	if m.ownsEvents {
		return m.events.Close()
	}
	return nil
}

// Subscribe returns a subscription to session events bounded by ctx.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Event] {
	return m.events.Subscribe(ctx)
}

// InitAuth makes the in-memory state mirror storage. A stored token and
// valid user are trusted without a network call. Anything else leaves the
// Manager unauthenticated; a backend read error is logged and returned.
// Calling it repeatedly is safe.
func (m *Manager) InitAuth(ctx context.Context) error {
	m.mu.Lock()
	rec, err := m.persist.Read()
	if err != nil || rec == nil {
		var prev User
		was := m.token != ""
		if was {
			prev, _ = m.resetLocked()
		}
		m.mu.Unlock()
		if was {
			m.publish(ctx, EventSignedOut, ReasonRestore, prev)
		}
		if err != nil {
			m.log.WarnContext(ctx, "failed to read stored session", logger.Error(err))
			return fmt.Errorf("session: restore: %w", err)
		}
		m.log.DebugContext(ctx, "no stored session")
		return nil
	}

	prev, was := m.user, m.token != ""
	m.token, m.user = rec.Token, rec.User
	m.mu.Unlock()

	m.log.InfoContext(ctx, "session restored", logger.UserID(rec.User.ID), logger.Username(rec.User.Username))
	m.transition(ctx, prev, was, rec.User, ReasonRestore)
	return nil
}

// SetSession makes s the current session and writes it through to storage.
// A session needs both a token and a user with a username.
// The in-memory transition happens even if the write fails; the write error
// is returned.
func (m *Manager) SetSession(s Session) error {
	return m.apply(context.Background(), s, ReasonSet, nil)
}

// SetUser replaces the profile of the current session. SetUser(nil) clears
// the whole session locally, since a token without a user is not a valid
// state. A user without a username is rejected with ErrInvalidSession.
func (m *Manager) SetUser(u *User) error {
	if u == nil {
		return m.clear(context.Background(), ReasonUserCleared)
	}
	if u.Username == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return ErrNotAuthenticated
	}
	m.user = *u
	if err := m.persist.WriteUser(*u); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}
	return nil
}

// Login authenticates with the Gateway and adopts the returned session.
// Gateway errors are returned unchanged.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if m.gateway == nil {
		return ErrNoGateway
	}
	gen := m.currentGeneration()
	s, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		m.log.InfoContext(ctx, "login failed", logger.Username(username), logger.Error(err))
		return err
	}
	return m.apply(ctx, s, ReasonLogin, &gen)
}

// Register creates an account through the Gateway and adopts the returned
// session.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	if m.gateway == nil {
		return ErrNoGateway
	}
	gen := m.currentGeneration()
	s, err := m.gateway.Register(ctx, username, password)
	if err != nil {
		m.log.InfoContext(ctx, "register failed", logger.Username(username), logger.Error(err))
		return err
	}
	return m.apply(ctx, s, ReasonRegister, &gen)
}

// Refresh asks the Gateway for a new session. Concurrent calls share one
// request and its result. An unauthorized answer clears the local session.
//
// The shared request ignores caller cancellation and is bounded by
// Config.RefreshTimeout. Each caller returns early when its own ctx is done.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.gateway == nil {
		return ErrNoGateway
	}
	ch := m.flight.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.RefreshTimeout)
		defer cancel()

		gen := m.currentGeneration()
		s, err := m.gateway.Refresh(rctx)
		if err != nil {
			if IsUnauthorized(err) {
				if cerr := m.clear(rctx, ReasonUnauthorized); cerr != nil {
					m.log.WarnContext(rctx, "failed to clear stored session", logger.Error(cerr))
				}
			}
			return nil, err
		}
		return nil, m.apply(rctx, s, ReasonRefresh, &gen)
	})

	select {
	case res := <-ch:
		if res.Shared {
			m.log.DebugContext(ctx, "refresh shared with concurrent caller")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logout clears the local session and storage, then tells the Gateway. A
// remote failure is logged only; the local teardown has already happened.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.clear(ctx, ReasonLogout)
	if m.gateway != nil {
		if rerr := m.gateway.Logout(ctx); rerr != nil {
			m.log.WarnContext(ctx, "remote logout failed", logger.Error(rerr))
		}
	}
	return err
}

// Status derives the session state from the stored token.
func (m *Manager) Status() Status {
	if m.IsAuthenticated() {
		return StatusAuthenticated
	}
	return StatusUnauthenticated
}

// IsAuthenticated reports whether a token is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Token returns the bearer token, or "" when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns the signed-in user and false when unauthenticated.
func (m *Manager) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.token != ""
}

// Session returns a copy of the current token and user.
func (m *Manager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return Session{}, false
	}
	return Session{Token: m.token, User: m.user}, true
}

// TokenSource exposes the current token to oauth2.Transport. It reads the
// Manager on every call, so it must not be wrapped in oauth2.ReuseTokenSource.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

type tokenSource struct {
	m *Manager
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	tok := ts.m.Token()
	if tok == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

func (m *Manager) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// apply is the single path that installs a session. A non-nil gen makes it
// conditional on no clear having happened since gen was read.
func (m *Manager) apply(ctx context.Context, s Session, reason Reason, gen *uint64) error {
	if s.Token == "" || s.User.Username == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	if gen != nil && *gen != m.generation {
		m.mu.Unlock()
		m.log.InfoContext(ctx, "discarding session from superseded call", slog.String("reason", string(reason)))
		return ErrSessionSuperseded
	}
	prev, was := m.user, m.token != ""
	m.token, m.user = s.Token, s.User
	werr := m.persist.Write(s)
	m.mu.Unlock()

	m.transition(ctx, prev, was, s.User, reason)
	if werr != nil {
		m.log.ErrorContext(ctx, "failed to persist session", logger.Error(werr))
		return fmt.Errorf("session: persist: %w", werr)
	}
	return nil
}

// clear is the single path that removes a session.
func (m *Manager) clear(ctx context.Context, reason Reason) error {
	m.mu.Lock()
	prev, was := m.resetLocked()
	err := m.persist.Clear()
	m.mu.Unlock()

	if was {
		m.log.InfoContext(ctx, "signed out", slog.String("reason", string(reason)), logger.UserID(prev.ID))
		m.publish(ctx, EventSignedOut, reason, prev)
	}
	if err != nil {
		m.log.ErrorContext(ctx, "failed to clear stored session", logger.Error(err))
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// resetLocked empties the in-memory session and returns what was there.
func (m *Manager) resetLocked() (User, bool) {
	prev, was := m.user, m.token != ""
	m.token, m.user = "", User{}
	m.generation++
	return prev, was
}

func (m *Manager) transition(ctx context.Context, prev User, wasAuthenticated bool, next User, reason Reason) {
	switch {
	case !wasAuthenticated:
		m.publish(ctx, EventSignedIn, reason, next)
	case prev.ID != next.ID:
		m.publish(ctx, EventSignedOut, ReasonReplaced, prev)
		m.publish(ctx, EventSignedIn, reason, next)
	}
}

func (m *Manager) publish(ctx context.Context, typ EventType, reason Reason, u User) {
	ev := Event{Type: typ, Reason: reason, User: u, At: time.Now()}
	if _, err := m.events.Broadcast(ctx, broadcast.Message[Event]{Data: ev}); err != nil {
		m.log.DebugContext(ctx, "session event not published", logger.Event(string(typ)), logger.Error(err))
	}
}
