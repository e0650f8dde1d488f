// Package app is the interactive terminal front end: it walks the route
// table, rendering each view with prompts and following the navigation the
// views and the auth store signal.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/routes"
	"github.com/authfront-dev/authfront/internal/session"
	"github.com/authfront-dev/authfront/internal/views"
)

// Runner drives the interactive session
type Runner struct {
	client   views.Poster
	store    *session.Store
	prompter Prompter
	out      io.Writer
	browser  func(url string) error
	persist  func() error
	expiry   func() (time.Time, bool)
	logger   zerolog.Logger

	current string
}

// Option configures a Runner
type Option func(*Runner)

// WithBrowser sets how external URLs are opened
func WithBrowser(fn func(url string) error) Option {
	return func(r *Runner) {
		r.browser = fn
	}
}

// WithPersist is called after every screen so cookie changes survive a crash
func WithPersist(fn func() error) Option {
	return func(r *Runner) {
		r.persist = fn
	}
}

// WithSessionExpiry is passed through to the dashboard
func WithSessionExpiry(fn func() (time.Time, bool)) Option {
	return func(r *Runner) {
		r.expiry = fn
	}
}

// WithLogger sets the runner logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner builds a runner. store should be created with
// session.WithRedirectOnUnauthenticated so protected screens fall back to login.
func NewRunner(c views.Poster, store *session.Store, prompter Prompter, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		client:   c,
		store:    store,
		prompter: prompter,
		out:      out,
		browser:  func(string) error { return errors.New("no browser configured") },
		persist:  func() error { return nil },
		logger:   zerolog.Nop(),
		current:  routes.Login,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Navigate implements views.Navigator
func (r *Runner) Navigate(route string) {
	r.current = routes.Normalize(route)
}

// External implements views.Navigator
func (r *Runner) External(url string) {
	fmt.Fprintf(r.out, "Opening %s...\n", url)
	if err := r.browser(url); err != nil {
		fmt.Fprintf(r.out, "⚠ Could not open browser automatically: %v\n", err)
		fmt.Fprintf(r.out, "Please visit: %s\n", url)
	}
}

// Current returns the route being shown
func (r *Runner) Current() string {
	return r.current
}

// Run shows start (a route path) and keeps following navigation until the
// user quits
func (r *Runner) Run(ctx context.Context, start string) error {
	if _, ok := routes.Lookup(start); !ok {
		return fmt.Errorf("unknown route %q", start)
	}
	r.Navigate(start)

	// Store redirects only apply while a protected screen is shown
	unsubscribe := r.store.Subscribe(func(_ session.State, ev session.Event) {
		if ev.Kind != session.EventNavigate {
			return
		}
		if route, ok := routes.Lookup(r.current); ok && route.RequiresSession {
			r.Navigate(ev.Route)
		}
	})
	defer unsubscribe()

	r.store.Initialize(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		route, ok := routes.Lookup(r.current)
		if !ok {
			return fmt.Errorf("unknown route %q", r.current)
		}

		r.logger.Debug().Str("route", route.Path).Msg("Showing screen")
		fmt.Fprintf(r.out, "\n== %s ==\n", route.Title)

		var err error
		switch route.View {
		case routes.ViewLogin:
			err = r.loginScreen(ctx)
		case routes.ViewRegister:
			err = r.registerScreen(ctx)
		case routes.ViewDashboard:
			err = r.dashboardScreen(ctx)
		}

		if perr := r.persist(); perr != nil {
			r.logger.Warn().Err(perr).Msg("Failed to save session")
		}

		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (r *Runner) loginScreen(ctx context.Context) error {
	login := views.NewLogin(r.client, r.store, r, views.WithLogger(r.logger))

	choice, err := r.prompter.Select("Sign in", []string{
		"Sign in with email",
		"Sign in with GitHub",
		"Create an account",
		"Quit",
	})
	if err != nil {
		return err
	}

	switch choice {
	case 0:
		email, err := r.prompter.Input("Email", false, nil)
		if err != nil {
			return err
		}
		password, err := r.prompter.Input("Password", true, nil)
		if err != nil {
			return err
		}
		st, _ := login.Submit(ctx, views.AuthRequest{Email: strings.TrimSpace(email), Password: password})
		r.printMessage(st)
	case 1:
		login.Federated(views.ProviderGitHub)
		fmt.Fprintln(r.out, "Finish signing in in your browser.")
		return ErrQuit
	case 2:
		r.Navigate(routes.Register)
	default:
		return ErrQuit
	}
	return nil
}

func (r *Runner) registerScreen(ctx context.Context) error {
	register := views.NewRegister(r.client, r.store, r, views.WithLogger(r.logger))

	choice, err := r.prompter.Select("Create an account", []string{
		"Register",
		"Back to sign in",
		"Quit",
	})
	if err != nil {
		return err
	}

	switch choice {
	case 0:
		email, err := r.prompter.Input("Email", false, nil)
		if err != nil {
			return err
		}
		password, err := r.prompter.Input("Password", true, nil)
		if err != nil {
			return err
		}
		confirm, err := r.prompter.Input("Confirm password", true, nil)
		if err != nil {
			return err
		}
		st, _ := register.Submit(ctx, views.RegisterRequest{
			Email:           strings.TrimSpace(email),
			Password:        password,
			ConfirmPassword: confirm,
		})
		r.printMessage(st)
	case 1:
		r.Navigate(routes.Login)
	default:
		return ErrQuit
	}
	return nil
}

func (r *Runner) dashboardScreen(ctx context.Context) error {
	dashboard := views.NewDashboard(r.store, views.WithLogger(r.logger), views.WithSessionExpiry(r.expiry))
	model := dashboard.Render()

	if model.Status != views.StatusAuthenticated {
		if model.Error != "" {
			fmt.Fprintf(r.out, "⚠ %s\n", model.Error)
		}
		fmt.Fprintln(r.out, "You are not signed in.")
		r.Navigate(routes.Login)
		return nil
	}

	PrintDashboard(r.out, model)

	choice, err := r.prompter.Select("Dashboard", []string{
		"Refresh",
		"Log out",
		"Quit",
	})
	if err != nil {
		return err
	}

	switch choice {
	case 0:
		r.store.Refresh(ctx)
	case 1:
		if err := dashboard.Logout(ctx); err != nil {
			fmt.Fprintf(r.out, "⚠ Backend logout failed (%v); local session cleared\n", err)
		} else {
			fmt.Fprintln(r.out, "✓ Logged out")
		}
	default:
		return ErrQuit
	}
	return nil
}

func (r *Runner) printMessage(st views.FormState) {
	switch st.MessageKind {
	case views.MessageSuccess:
		fmt.Fprintf(r.out, "✓ %s\n", st.Message)
	case views.MessageError:
		fmt.Fprintf(r.out, "✗ %s\n", st.Message)
	}
}

// PrintDashboard writes an authenticated dashboard model
func PrintDashboard(out io.Writer, model views.DashboardModel) {
	fmt.Fprintf(out, "Welcome, %s!\n", model.Greeting)
	if model.User.Email != "" {
		fmt.Fprintf(out, "  Email:    %s\n", model.User.Email)
	}
	fmt.Fprintf(out, "  Account:  %s\n", model.User.Kind)
	if model.GitHub != nil {
		fmt.Fprintf(out, "  GitHub:   %s\n", model.GitHub.Login)
		if model.GitHub.AvatarURL != "" {
			fmt.Fprintf(out, "  Avatar:   %s\n", model.GitHub.AvatarURL)
		}
	}
	if model.SessionExpiresAt != nil {
		fmt.Fprintf(out, "  Session expires: %s\n", model.SessionExpiresAt.Local().Format(time.RFC1123))
	}
}
