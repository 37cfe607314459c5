// Package browser implements the client-side half of the authorization
// gates: the per-tab session context that resolves the current session
// asynchronously, and the render gate that withholds protected subtrees
// until the session settles.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/session"
)

// Status describes the resolution state of the browser session.
type Status int

const (
	// StatusLoading means resolution has not settled yet.
	StatusLoading Status = iota
	// StatusAuthenticated means a valid session resolved.
	StatusAuthenticated
	// StatusUnauthenticated means resolution settled with no session.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// State is a snapshot of the session context. Claims is non-nil only when
// Status is StatusAuthenticated.
type State struct {
	Status Status
	Claims *session.Claims
}

// Fetcher fetches the current session claims from the session-issuing
// service. Returning (nil, nil) means "cleanly no session"; an error means
// the service could not be reached.
type Fetcher interface {
	Fetch(ctx context.Context) (*session.Claims, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (*session.Claims, error)

func (f FetcherFunc) Fetch(ctx context.Context) (*session.Claims, error) { return f(ctx) }

// SessionContext is the single per-tab holder of session state. It is
// initialized once at the root of the render tree, optionally seeded with
// a server-computed session, and thereafter transitions as resolution
// completes. All consumers read the same instance; there is no second
// independently-fetched copy to race against.
type SessionContext struct {
	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
	closed bool
	cancel context.CancelFunc
}

// NewSessionContext creates the session context. A non-nil initial session
// starts the context in StatusAuthenticated; otherwise it starts in
// StatusLoading until Resolve settles it.
func NewSessionContext(initial *session.Claims) *SessionContext {
	state := State{Status: StatusLoading}
	if initial != nil {
		state = State{Status: StatusAuthenticated, Claims: initial}
	}
	return &SessionContext{
		state: state,
		subs:  make(map[int]chan State),
	}
}

// State returns the current snapshot.
func (s *SessionContext) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers for state transitions. The returned channel receives
// every transition after the call; the cancel function must be called when
// the subscriber unmounts. The channel is buffered so a slow subscriber
// never blocks a transition.
func (s *SessionContext) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 4)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Resolve starts asynchronous session resolution against the fetcher.
// The transition out of StatusLoading fires exactly once per Resolve call,
// regardless of how many consumers are subscribed. Transient fetch
// failures are retried with exponential backoff; when retries are
// exhausted the context fails closed to StatusUnauthenticated.
func (s *SessionContext) Resolve(ctx context.Context, fetcher Fetcher) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go func() {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 100 * time.Millisecond

		claims, err := backoff.Retry(ctx, func() (*session.Claims, error) {
			return fetcher.Fetch(ctx)
		}, backoff.WithBackOff(bo), backoff.WithMaxTries(3))

		if err != nil {
			if ctx.Err() != nil {
				// Navigation interrupted resolution; the eventual result
				// is discarded rather than applied to a torn-down tab.
				return
			}
			log.Warn().Err(err).Msg("Session resolution failed, treating as unauthenticated")
			s.set(State{Status: StatusUnauthenticated})
			return
		}

		if claims == nil {
			s.set(State{Status: StatusUnauthenticated})
			return
		}
		s.set(State{Status: StatusAuthenticated, Claims: claims})
	}()
}

// SignOut drops the current session: the context re-enters StatusLoading
// so gates can re-evaluate, then settles unauthenticated.
func (s *SessionContext) SignOut() {
	s.set(State{Status: StatusLoading})
	s.set(State{Status: StatusUnauthenticated})
}

// Close tears the context down with its render tree. Pending resolution is
// cancelled and subscriber channels are closed; late transitions are
// dropped.
func (s *SessionContext) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *SessionContext) set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = state
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
			// Subscriber fell behind; it will read State() on next render.
		}
	}
}
