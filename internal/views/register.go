package views

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/client"
	"github.com/authfront-dev/authfront/internal/routes"
)

const (
	registerFailedMessage  = "registration failed"
	registerSuccessMessage = "registration successful, redirecting to dashboard"
)

// Register drives the registration screen
type Register struct {
	client  Poster
	session Session
	nav     Navigator
	form    *Form
	logger  zerolog.Logger
}

// NewRegister builds the registration controller
func NewRegister(c Poster, s Session, nav Navigator, opts ...Option) *Register {
	o := buildOptions(opts)
	return &Register{
		client:  c,
		session: s,
		nav:     nav,
		form:    o.form,
		logger:  o.logger,
	}
}

// State returns the form state
func (r *Register) State() FormState {
	return r.form.State()
}

// Submit checks the confirmation, the password length and the email format
// before anything is sent, then posts the account to the backend
func (r *Register) Submit(ctx context.Context, req RegisterRequest) (FormState, error) {
	if err := r.form.begin(); err != nil {
		return r.form.State(), err
	}

	if err := validateStruct(req, registerOrder); err != nil {
		return r.form.fail(err.Error()), err
	}

	_, st, err := post(ctx, r.client, r.form, client.RegisterPath, req.Payload(), registerFailedMessage)
	if err != nil {
		r.logger.Debug().Err(err).Str("email", req.Email).Msg("Registration rejected")
		return st, err
	}

	st = r.form.succeed(registerSuccessMessage)
	r.logger.Info().Str("email", req.Email).Msg("Registered")

	r.session.Refresh(ctx)
	r.nav.Navigate(routes.Dashboard)
	return st, nil
}
