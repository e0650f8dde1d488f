package views

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/client"
	"github.com/authfront-dev/authfront/internal/routes"
)

// ProviderGitHub is the only federated provider the backend offers
const ProviderGitHub = "github"

const (
	loginFailedMessage  = "login failed"
	loginSuccessMessage = "login successful"
)

// Login drives the login screen
type Login struct {
	client  Poster
	session Session
	nav     Navigator
	form    *Form
	logger  zerolog.Logger
}

// NewLogin builds the login controller
func NewLogin(c Poster, s Session, nav Navigator, opts ...Option) *Login {
	o := buildOptions(opts)
	return &Login{
		client:  c,
		session: s,
		nav:     nav,
		form:    o.form,
		logger:  o.logger,
	}
}

// State returns the form state
func (l *Login) State() FormState {
	return l.form.State()
}

// Submit validates req and posts it to the backend. On success the session
// is refreshed and navigation to the dashboard is signalled; any failure
// leaves the user on the login screen with a message.
func (l *Login) Submit(ctx context.Context, req AuthRequest) (FormState, error) {
	if err := l.form.begin(); err != nil {
		return l.form.State(), err
	}

	if err := validateStruct(req, loginOrder); err != nil {
		return l.form.fail(err.Error()), err
	}

	data, st, err := post(ctx, l.client, l.form, client.LoginPath, req, loginFailedMessage)
	if err != nil {
		l.logger.Debug().Err(err).Str("email", req.Email).Msg("Login rejected")
		return st, err
	}

	st = l.form.succeed(successText(data, loginSuccessMessage))
	l.logger.Info().Str("email", req.Email).Msg("Logged in")

	l.session.Refresh(ctx)
	l.nav.Navigate(routes.Dashboard)
	return st, nil
}

// Federated starts the backend-owned login flow for provider
func (l *Login) Federated(provider string) {
	l.nav.External(l.client.AuthorizationURL(provider))
}

// successText prefers a short plain-text reply from the backend
func successText(data []byte, fallback string) string {
	text := strings.TrimSpace(string(data))
	if text == "" || !utf8.ValidString(text) || len(text) > 200 ||
		strings.ContainsAny(text, "{}[]<>\n") {
		return fallback
	}
	return text
}
