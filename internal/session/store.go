// Package session holds the process-wide authentication state: who is signed
// in, whether that is still being determined, and the last failure.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/client"
	"github.com/authfront-dev/authfront/internal/identity"
	"github.com/authfront-dev/authfront/internal/routes"
)

// ErrTornDown is returned by Logout once the store has been torn down
var ErrTornDown = errors.New("session store torn down")

// Requester is the part of the request client the store uses
type Requester interface {
	Get(ctx context.Context, endpoint string, opts ...client.RequestOption) (*http.Response, error)
	Logout(ctx context.Context) (*http.Response, error)
}

// State is a snapshot of the store
type State struct {
	User    *identity.Identity
	Loading bool
	Err     error
}

// Authenticated reports whether an identity is present
func (s State) Authenticated() bool {
	return s.User != nil
}

// EventKind distinguishes store notifications
type EventKind int

const (
	// EventChanged is sent whenever State changes
	EventChanged EventKind = iota
	// EventNavigate asks the front end to show Route
	EventNavigate
)

// Event is delivered to subscribers together with the current State
type Event struct {
	Kind  EventKind
	Route string
}

// Listener receives store notifications. Listeners run on the goroutine that
// caused the change, outside the store lock, so they may call back into the store.
type Listener func(State, Event)

type subscriber struct {
	id int
	fn Listener
}

// Store tracks the signed-in identity. Front ends create one per process and
// tear it down on exit.
type Store struct {
	requester Requester
	logger    zerolog.Logger
	redirect  bool
	onLogout  func() error

	mu          sync.Mutex
	state       State
	subscribers []subscriber
	nextID      int
	generation  uint64
	tornDown    bool
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRedirectOnUnauthenticated makes Initialize and Refresh signal
// navigation to the login route when no identity could be established
func WithRedirectOnUnauthenticated() Option {
	return func(s *Store) {
		s.redirect = true
	}
}

// WithLogoutHook runs fn after every logout, whatever the backend said.
// Front ends use it to wipe persisted cookies.
func WithLogoutHook(fn func() error) Option {
	return func(s *Store) {
		s.onLogout = fn
	}
}

// NewStore creates a store backed by r
func NewStore(r Requester, opts ...Option) *Store {
	s := &Store{
		requester: r,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a function removing it
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return func() {}
	}

	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Teardown drops every subscriber. The store ignores all later calls.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tornDown = true
	s.subscribers = nil
}

// Initialize loads the current user, flagging Loading while the request is
// in flight. It always finishes with Loading false.
func (s *Store) Initialize(ctx context.Context) State {
	return s.load(ctx, true)
}

// Refresh revalidates the session without the loading flag
func (s *Store) Refresh(ctx context.Context) State {
	return s.load(ctx, false)
}

func (s *Store) load(ctx context.Context, showLoading bool) State {
	s.mu.Lock()
	if s.tornDown {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.generation++
	gen := s.generation
	if showLoading {
		s.state.Loading = true
	}
	st, subs := s.state, s.listeners()
	s.mu.Unlock()

	if showLoading {
		notify(subs, st, Event{Kind: EventChanged})
	}

	user, err := s.fetchUser(ctx)

	s.mu.Lock()
	if s.tornDown || gen != s.generation {
		// A newer load or a logout owns the state now
		if s.tornDown {
			s.state.Loading = false
		}
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state = State{User: user, Err: err}
	st, subs = s.state, s.listeners()
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug().Err(err).Msg("No active session")
	} else {
		s.logger.Debug().Str("login", user.Login).Str("kind", string(user.Kind)).Msg("Session established")
	}

	notify(subs, st, Event{Kind: EventChanged})
	if user == nil && s.redirect {
		notify(subs, st, Event{Kind: EventNavigate, Route: routes.Login})
	}
	return st
}

func (s *Store) fetchUser(ctx context.Context) (*identity.Identity, error) {
	resp, err := s.requester.Get(ctx, client.UserPath)
	if err != nil {
		return nil, err
	}

	body, err := client.ReadResult(resp)
	if err != nil {
		var appErr *client.AppError
		if errors.As(err, &appErr) {
			return nil, errors.Join(identity.ErrNotAuthenticated, err)
		}
		return nil, err
	}

	return identity.Decode(body)
}

// Logout ends the session on a best-effort basis: the identity is cleared and
// navigation to the login route is signalled even when the backend call
// fails. The returned error is informational.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return ErrTornDown
	}
	s.mu.Unlock()

	var netErr error
	resp, err := s.requester.Logout(ctx)
	if err != nil {
		netErr = err
	} else if _, err := client.ReadResult(resp); err != nil {
		netErr = err
	}
	if netErr != nil {
		s.logger.Warn().Err(netErr).Msg("Backend logout failed, clearing local session anyway")
	}

	var hookErr error
	if s.onLogout != nil {
		hookErr = s.onLogout()
	}

	s.mu.Lock()
	s.generation++
	s.state = State{}
	st, subs := s.state, s.listeners()
	s.mu.Unlock()

	notify(subs, st, Event{Kind: EventChanged})
	notify(subs, st, Event{Kind: EventNavigate, Route: routes.Login})

	return errors.Join(netErr, hookErr)
}

// listeners copies the subscriber list; callers hold s.mu
func (s *Store) listeners() []Listener {
	out := make([]Listener, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		out = append(out, sub.fn)
	}
	return out
}

func notify(listeners []Listener, st State, ev Event) {
	for _, fn := range listeners {
		fn(st, ev)
	}
}
