package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State tracks whether the store has completed its first identity fetch.
type State uint8

const (
	// StateUninitialized means no fetch has completed yet.
	StateUninitialized State = iota
	// StateReady means the held value reflects a completed fetch or later writes.
	StateReady
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Fetcher performs the remote "get current session" call.
type Fetcher interface {
	FetchSession(ctx context.Context) (*Session, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (*Session, error)

// FetchSession calls f.
func (f FetcherFunc) FetchSession(ctx context.Context) (*Session, error) {
	return f(ctx)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithFetchTimeout bounds each remote fetch. Zero leaves fetches unbounded.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.fetchTimeout = timeout
	}
}

type subscriber struct {
	id uint64
	fn func(*Session)
}

// Store holds at most one Session and notifies subscribers on every change.
type Store struct {
	fetcher      Fetcher
	fetchTimeout time.Duration
	logger       zerolog.Logger

	// ensureMu serialises the first fetch so concurrent first navigations
	// share one remote call.
	ensureMu sync.Mutex

	mu             sync.RWMutex
	current        *Session
	state          State
	nextSubscriber uint64
	subscribers    []subscriber
}

// NewStore returns an UNINITIALIZED store backed by fetcher.
func NewStore(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Session returns a copy of the held session, or nil when signed out.
func (s *Store) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// State reports whether the first fetch has completed.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a session with an identity is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsAuthenticated(s.current)
}

// IsAdmin reports whether the held session has the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsAdmin(s.current)
}

// Set overwrites the held session. Passing nil signs the client out.
func (s *Store) Set(value *Session) {
	s.replace(value, false)
}

// Clear signs the client out.
func (s *Store) Clear() {
	s.replace(nil, false)
}

// Fetch asks the product API for the current identity and replaces the held
// session with the result. Any failure, including a payload without an id,
// leaves the store signed out. Fetch never fails outward and always leaves
// the store READY.
//
// The call is detached from ctx cancellation so an abandoned request cannot
// abort it; the store's fetch timeout bounds it instead.
func (s *Store) Fetch(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	var next *Session
	if s.fetcher != nil {
		fetched, err := s.fetcher.FetchSession(ctx)
		switch {
		case err != nil:
			s.logger.Debug().Err(err).Msg("session fetch failed, treating client as signed out")
		case !IsAuthenticated(fetched):
			s.logger.Debug().Msg("session fetch returned no identity")
		default:
			next = fetched
		}
	}
	s.replace(next, true)
}

// Ensure performs the first fetch if none has completed and reports whether
// it did. Once the store is READY, Ensure returns false without a remote call.
func (s *Store) Ensure(ctx context.Context) bool {
	if s.State() == StateReady {
		return false
	}
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.State() == StateReady {
		return false
	}
	s.Fetch(ctx)
	return true
}

// Subscribe registers fn to receive a copy of the session after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(*Session)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSubscriber++
	id := s.nextSubscriber
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) replace(value *Session, markReady bool) {
	s.mu.Lock()
	s.current = value.Clone()
	if markReady {
		s.state = StateReady
	}
	subscribers := make([]subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub.fn(value.Clone())
	}
}
