package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/views"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var github bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the authentication backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if github {
				return runGitHubLogin(commonOptions(cmd)...)
			}
			return runLogin(cmd.Context(), email, password, commonOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set AUTHFRONT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set AUTHFRONT_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&github, "github", false, "Sign in with GitHub in the browser")

	return cmd
}

// commandNavigator records where a view asked to go; commands print instead
// of switching screens
type commandNavigator struct {
	route    string
	external string
	browser  func(url string) error
	err      error
}

func (n *commandNavigator) Navigate(route string) {
	n.route = route
}

func (n *commandNavigator) External(url string) {
	n.external = url
	if n.browser != nil {
		n.err = n.browser(url)
	}
}

func runLogin(ctx context.Context, email, password string, opts ...Option) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("AUTHFRONT_EMAIL")
	}
	if password == "" {
		password = os.Getenv("AUTHFRONT_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or AUTHFRONT_EMAIL env var)")
	}

	o, err := buildOptions(opts)
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		password, err = o.readPassword("Password: ")
		if errors.Is(err, errNonInteractive) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or AUTHFRONT_PASSWORD env var)")
		}
		if err != nil {
			return err
		}
	}

	env, err := o.open()
	if err != nil {
		return err
	}
	defer env.Close()

	out := o.output()
	store := env.NewSessionStore()
	nav := &commandNavigator{}

	// Picks up the CSRF cookie before the credentials are posted
	store.Refresh(ctx)

	fmt.Fprintf(out, "Logging in to %s...\n", env.BackendURL)

	login := views.NewLogin(env.Client, store, nav, views.WithLogger(o.env.Logger))
	st, err := login.Submit(ctx, views.AuthRequest{Email: email, Password: password})
	persistSession(out, env)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(out, "✓ %s\n", st.Message)
	if user := store.State().User; user != nil {
		fmt.Fprintf(out, "  User: %s (%s)\n", user.DisplayName(), user.Kind)
	}

	return nil
}

func runGitHubLogin(opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}

	env, err := o.open()
	if err != nil {
		return err
	}
	defer env.Close()

	out := o.output()
	nav := &commandNavigator{browser: o.browser}
	login := views.NewLogin(env.Client, env.NewSessionStore(), nav, views.WithLogger(o.env.Logger))

	login.Federated(views.ProviderGitHub)

	fmt.Fprintf(out, "Opening GitHub sign-in at %s...\n", nav.external)
	if nav.err != nil {
		fmt.Fprintf(out, "⚠ Could not open browser automatically: %v\n", nav.err)
		fmt.Fprintf(out, "Please visit: %s\n", nav.external)
	}
	fmt.Fprintln(out, "Finish signing in in your browser.")

	return nil
}
