package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Broadcast after the broadcaster has been closed.
var ErrClosed = errors.New("broadcast.closed")

// Message wraps one broadcast value.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive() <-chan Message[T]

	// Dropped reports how many messages were discarded because the
	// subscriber's buffer was full.
	Dropped() uint64

	// Close ends the subscription. It is idempotent.
	Close() error
}

// Broadcaster fans messages out to every active subscriber without blocking
// the sender.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber whose lifetime is bounded by ctx.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers msg to every subscriber with buffer space and
	// returns the number of subscribers that received it.
	Broadcast(ctx context.Context, msg Message[T]) (int, error)

	// Close ends every subscription. Later subscribers are returned closed.
	Close() error
}

type subscriber[T any] struct {
	mu      sync.Mutex
	ch      chan Message[T]
	done    chan struct{}
	closed  bool
	dropped uint64
	detach  func()
}

func newSubscriber[T any](size int) *subscriber[T] {
	return &subscriber[T]{
		ch:   make(chan Message[T], size),
		done: make(chan struct{}),
	}
}

func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *subscriber[T]) Close() error {
	if s.shutdown() && s.detach != nil {
		s.detach()
	}
	return nil
}

// shutdown closes the channels once and reports whether this call did it.
func (s *subscriber[T]) shutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.done)
	close(s.ch)
	return true
}

func (s *subscriber[T]) deliver(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		s.dropped++
		return false
	}
}
