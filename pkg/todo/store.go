package todo

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/gotodo/todokit/pkg/broadcast"
	"github.com/gotodo/todokit/pkg/cache"
	"github.com/gotodo/todokit/pkg/logger"
	"github.com/gotodo/todokit/pkg/session"
)

// Store caches the signed-in user's to-do list, newest first, with an LRU
// index by id. A rejected authorization on any call signs the session out
// and empties the store. Other failures keep the last known data.
type Store struct {
	svc Service
	inv session.Invalidator
	log *slog.Logger

	mu         sync.RWMutex
	items      []Item
	loading    int
	generation uint64
	index      *cache.LRU[int64, Item]
}

type StoreOption func(*Store)

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// WithConfig applies cfg; it replaces the index, so pass it before use.
func WithConfig(cfg Config) StoreOption {
	return func(s *Store) { s.index = cache.New[int64, Item](cfg.IndexSize) }
}

// NewStore creates an empty store backed by svc. inv is signed out when svc
// reports an unauthorized call.
func NewStore(svc Service, inv session.Invalidator, opts ...StoreOption) *Store {
	s := &Store{
		svc:   svc,
		inv:   inv,
		index: cache.New[int64, Item](DefaultConfig().IndexSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDiscard(s.log).With(logger.Component("todo"))
	return s
}

// Fetch replaces the cached list with the server's.
func (s *Store) Fetch(ctx context.Context) error {
	gen := s.begin()
	defer s.end()

	items, err := s.svc.List(ctx)
	if err != nil {
		s.fail(ctx, "todos.list", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return session.ErrSessionSuperseded
	}
	s.items = slices.Clone(items)
	s.index.Clear()
	// Put oldest first so the newest entries are the most recently used.
	for _, it := range slices.Backward(s.items) {
		s.index.Put(it.ID, it)
	}
	s.log.DebugContext(ctx, "todos fetched", logger.Count(len(s.items)))
	return nil
}

// Create adds an item on the server and prepends it locally.
func (s *Store) Create(ctx context.Context, value string) (Item, error) {
	gen := s.begin()
	defer s.end()

	item, err := s.svc.Create(ctx, value)
	if err != nil {
		s.fail(ctx, "todos.create", err)
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return Item{}, session.ErrSessionSuperseded
	}
	s.items = slices.Insert(s.items, 0, item)
	s.index.Put(item.ID, item)
	return item, nil
}

// Delete removes an item on the server and then locally.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.begin()
	defer s.end()

	if err := s.svc.Delete(ctx, id); err != nil {
		s.fail(ctx, "todos.delete", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(it Item) bool { return it.ID == id })
	s.index.Remove(id)
	return nil
}

// Get returns the item with id, from the index when possible.
func (s *Store) Get(ctx context.Context, id int64) (Item, error) {
	if it, ok := s.index.Get(id); ok {
		return it, nil
	}

	gen := s.begin()
	defer s.end()

	item, err := s.svc.Get(ctx, id)
	if err != nil {
		s.fail(ctx, "todos.get", err)
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.index.Put(item.ID, item)
	}
	return item, nil
}

// Items returns a copy of the cached list, newest first.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// IsLoading reports whether any call is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Clear drops all cached data. Results of calls already in flight are
// discarded when they arrive.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.index.Clear()
	s.generation++
}

// Watch clears the store on every signed_out event until ctx is done or sub
// is closed. It blocks; run it in its own goroutine.
func (s *Store) Watch(ctx context.Context, sub broadcast.Subscriber[session.Event]) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Receive():
			if !ok {
				return
			}
			if msg.Data.Type == session.EventSignedOut {
				s.log.DebugContext(ctx, "clearing todos", slog.String("reason", string(msg.Data.Reason)))
				s.Clear()
			}
		}
	}
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
	return s.generation
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
}

func (s *Store) fail(ctx context.Context, op string, err error) {
	session.HandleFailure(ctx, s.inv, err, s.Clear, s.log.With(logger.Operation(op)))
}
