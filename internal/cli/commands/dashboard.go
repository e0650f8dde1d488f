package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/cli/app"
	"github.com/authfront-dev/authfront/internal/views"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"whoami"},
		Short:   "Show the signed-in user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), commonOptions(cmd)...)
		},
	}
}

func runDashboard(ctx context.Context, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}

	env, err := o.open()
	if err != nil {
		return err
	}
	defer env.Close()

	store := env.NewSessionStore()
	store.Initialize(ctx)
	persistSession(o.output(), env)

	dashboard := views.NewDashboard(store,
		views.WithLogger(o.env.Logger),
		views.WithSessionExpiry(env.Jar.SessionExpiry),
	)
	model := dashboard.Render()

	if model.Status != views.StatusAuthenticated {
		if model.Error != "" {
			return fmt.Errorf("%s (%s)", model.Error, env.BackendURL)
		}
		return fmt.Errorf("not authenticated. Please run 'authfront login' first")
	}

	app.PrintDashboard(o.output(), model)
	return nil
}
