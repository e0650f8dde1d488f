package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/views"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), commonOptions(cmd)...)
		},
	}
}

func runLogout(ctx context.Context, opts ...Option) error {
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
	dashboard := views.NewDashboard(env.NewSessionStore(), views.WithLogger(o.env.Logger))

	// The local session is gone whatever the backend says
	if err := dashboard.Logout(ctx); err != nil {
		fmt.Fprintf(out, "⚠ Backend logout failed: %v\n", err)
	}

	fmt.Fprintf(out, "✓ Logged out of %s\n", env.BackendURL)
	return nil
}
