package store

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/optimistic"
)

// Op identifies the kind of transition applied to a store.
type Op string

const (
	OpPush    Op = "push"
	OpUpdate  Op = "update"
	OpForce   Op = "force"
	OpRevert  Op = "revert"
	OpResolve Op = "resolve" // Resolve or Try with a successful outcome
	OpReject  Op = "reject"  // Resolve or Try with a failed outcome
)

// Observer receives one callback per transition applied to a store.
// pending reports the state of the container after the transition.
// Implementations must be safe for concurrent use.
type Observer interface {
	Transition(op Op, pending bool)
}

// Option configures a Store.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	observers []Observer
}

// WithLogger sets the logger used for debug-level transition logs.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithObserver registers an observer for transitions. May be given more
// than once; observers are invoked in registration order.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Store holds the current optimistic value for one logical piece of state
// and serializes transitions from concurrent callers.
//
// Each transition applies the corresponding optimistic.Value operation
// under the store's lock and then notifies subscribers with the new
// container. Transitions from concurrent goroutines are applied in some
// serial order; within one goroutine they are applied in program order.
type Store[T any] struct {
	mu      sync.RWMutex
	current optimistic.Value[T]

	// subs are keyed by subscription ID so Subscribe can hand back an
	// unsubscribe func without the caller tracking anything.
	subs    map[uint64]func(optimistic.Value[T])
	nextSub uint64

	logger    *slog.Logger
	observers []Observer
}

// New creates a Store whose container starts resolved at initial.
func New[T any](initial T, opts ...Option) *Store[T] {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[T]{
		current:   optimistic.FromResolved(initial),
		subs:      make(map[uint64]func(optimistic.Value[T])),
		logger:    cfg.logger,
		observers: cfg.observers,
	}
}

// Get returns the current container.
func (s *Store[T]) Get() optimistic.Value[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Current returns the currently displayed value.
func (s *Store[T]) Current() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Unwrap()
}

// IsPending reports whether the current container is pending.
func (s *Store[T]) IsPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsPending()
}

// Subscribe registers fn to be called with the new container after every
// transition. It returns an unsubscribe func. fn is called outside the
// store's lock; it may read the store but must not assume the container it
// received is still current.
func (s *Store[T]) Subscribe(fn func(optimistic.Value[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Push transitions to pending with v as the displayed value.
func (s *Store[T]) Push(v T) optimistic.Value[T] {
	return s.transition(OpPush, func(c optimistic.Value[T]) optimistic.Value[T] {
		return c.Push(v)
	})
}

// Update transitions to pending with f(fallback) as the displayed value.
// See optimistic.Value.Update for the fallback-baseline semantics.
func (s *Store[T]) Update(f func(T) T) optimistic.Value[T] {
	return s.transition(OpUpdate, func(c optimistic.Value[T]) optimistic.Value[T] {
		return c.Update(f)
	})
}

// Force commits the displayed value as authoritative.
func (s *Store[T]) Force() optimistic.Value[T] {
	return s.transition(OpForce, func(c optimistic.Value[T]) optimistic.Value[T] {
		return c.Force()
	})
}

// Revert abandons the optimistic value and resolves to the fallback.
func (s *Store[T]) Revert() optimistic.Value[T] {
	return s.transition(OpRevert, func(c optimistic.Value[T]) optimistic.Value[T] {
		return c.Revert()
	})
}

// Resolve finalizes the current state with an operation's outcome.
// The (v, err) signature composes directly with Go call results:
//
//	likes.Resolve(api.Like(postID))
func (s *Store[T]) Resolve(v T, err error) optimistic.Value[T] {
	op := OpResolve
	if err != nil {
		op = OpReject
	}
	return s.transition(op, func(c optimistic.Value[T]) optimistic.Value[T] {
		return c.Resolve(v, err)
	})
}

// Try finalizes s with a delta outcome, applying optimistic.Try under the
// store's lock. It is a function because the outcome type U is independent
// of the store's value type.
func Try[T, U any](s *Store[T], a U, err error, combine func(T, U) T) optimistic.Value[T] {
	op := OpResolve
	if err != nil {
		op = OpReject
	}
	return s.transition(op, func(c optimistic.Value[T]) optimistic.Value[T] {
		return optimistic.Try(c, a, err, combine)
	})
}

// transition applies apply under the write lock, then notifies observers
// and subscribers with the result. Subscribers are copied before notifying
// so a callback can subscribe or unsubscribe without deadlocking.
func (s *Store[T]) transition(op Op, apply func(optimistic.Value[T]) optimistic.Value[T]) optimistic.Value[T] {
	s.mu.Lock()
	next := apply(s.current)
	s.current = next
	subs := make([]func(optimistic.Value[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.logger.Debug("optimistic transition", "op", op, "pending", next.IsPending())

	for _, o := range s.observers {
		o.Transition(op, next.IsPending())
	}
	for _, fn := range subs {
		fn(next)
	}
	return next
}
