package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/views"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the authentication backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), email, password, commonOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set AUTHFRONT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set AUTHFRONT_PASSWORD, will prompt twice if not provided)")

	return cmd
}

func runRegister(ctx context.Context, email, password string, opts ...Option) error {
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

	// A password given up front is its own confirmation
	confirm := password
	if password == "" {
		password, err = o.readPassword("Password: ")
		if err == nil {
			confirm, err = o.readPassword("Confirm password: ")
		}
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
	store.Refresh(ctx)

	register := views.NewRegister(env.Client, store, &commandNavigator{}, views.WithLogger(o.env.Logger))
	st, err := register.Submit(ctx, views.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	persistSession(out, env)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(out, "✓ %s\n", st.Message)
	if user := store.State().User; user != nil {
		fmt.Fprintf(out, "  User: %s (%s)\n", user.DisplayName(), user.Kind)
	}

	return nil
}
