// Package views holds the controllers behind the login, register and
// dashboard screens. They own form state, validate input, talk to the backend
// through the request client and signal navigation; rendering is left to the
// front ends.
package views

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/client"
	"github.com/authfront-dev/authfront/internal/session"
)

// ErrInFlight is returned when a form is submitted while a previous
// submission has not finished. No request is issued.
var ErrInFlight = errors.New("submission already in flight")

const unreachableMessage = "backend unreachable"

// Phase is where a form is in its submit cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	default:
		return "idle"
	}
}

// MessageKind selects how a form message is styled
type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageError   MessageKind = "error"
	MessageSuccess MessageKind = "success"
)

// FormState is what a front end renders for a form. A failed submission is
// PhaseIdle with an error message.
type FormState struct {
	Phase       Phase
	Message     string
	MessageKind MessageKind
}

// Submitting reports whether the submit control should be disabled
func (s FormState) Submitting() bool {
	return s.Phase == PhaseSubmitting
}

// Form holds the state of one form. It is safe for concurrent use.
type Form struct {
	mu    sync.Mutex
	state FormState
}

// NewForm returns an idle form
func NewForm() *Form {
	return &Form{}
}

// State returns the current form state
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset returns the form to idle and clears its message
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FormState{}
}

func (f *Form) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Phase == PhaseSubmitting {
		return ErrInFlight
	}
	f.state = FormState{Phase: PhaseSubmitting}
	return nil
}

func (f *Form) fail(message string) FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FormState{Phase: PhaseIdle, Message: message, MessageKind: MessageError}
	return f.state
}

func (f *Form) succeed(message string) FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FormState{Phase: PhaseSuccess, Message: message, MessageKind: MessageSuccess}
	return f.state
}

// Navigator carries out navigation requested by a view
type Navigator interface {
	// Navigate shows the screen for an internal route
	Navigate(route string)
	// External leaves the application for a backend-owned URL
	External(url string)
}

// Poster is the part of the request client the form views use
type Poster interface {
	Post(ctx context.Context, endpoint string, body any, opts ...client.RequestOption) (*http.Response, error)
	AuthorizationURL(provider string) string
}

// Session is the part of the auth store the views use
type Session interface {
	State() session.State
	Refresh(ctx context.Context) session.State
	Logout(ctx context.Context) error
}

// Option configures a view
type Option func(*options)

type options struct {
	form          *Form
	logger        zerolog.Logger
	sessionExpiry func() (time.Time, bool)
}

// WithForm shares form state between view instances, for front ends that
// build a view per request
func WithForm(form *Form) Option {
	return func(o *options) {
		o.form = form
	}
}

// WithLogger sets the view logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSessionExpiry lets the dashboard show when the session cookie expires
func WithSessionExpiry(fn func() (time.Time, bool)) Option {
	return func(o *options) {
		o.sessionExpiry = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.form == nil {
		o.form = NewForm()
	}
	return o
}

// post sends body to endpoint. Failures settle form with an error message
// and are returned; on success the reply body is returned and form is left
// for the caller to settle.
func post(ctx context.Context, c Poster, form *Form, endpoint string, body any, fallback string) ([]byte, FormState, error) {
	resp, err := c.Post(ctx, endpoint, body)
	if err != nil {
		if errors.Is(err, client.ErrNetwork) {
			return nil, form.fail(unreachableMessage), err
		}
		return nil, form.fail(fallback), err
	}

	data, err := client.ReadResult(resp)
	if err != nil {
		var appErr *client.AppError
		switch {
		case errors.As(err, &appErr) && appErr.Message != "":
			return nil, form.fail(appErr.Message), err
		case errors.Is(err, client.ErrNetwork):
			return nil, form.fail(unreachableMessage), err
		default:
			return nil, form.fail(fallback), err
		}
	}

	return data, form.State(), nil
}
