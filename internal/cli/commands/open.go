package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/cli/app"
	"github.com/authfront-dev/authfront/internal/routes"
	"github.com/authfront-dev/authfront/internal/session"
)

// NewOpenCmd creates the open command
func NewOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [route]",
		Short: "Start an interactive session (/, /register or /dashboard)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := routes.Login
			if len(args) > 0 {
				start = args[0]
			}
			return runOpen(cmd.Context(), start, commonOptions(cmd)...)
		},
	}
}

func runOpen(ctx context.Context, start string, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}

	env, err := o.open()
	if err != nil {
		return err
	}
	defer env.Close()

	store := env.NewSessionStore(session.WithRedirectOnUnauthenticated())
	defer store.Teardown()

	runner := app.NewRunner(env.Client, store, o.prompter, o.output(),
		app.WithBrowser(o.browser),
		app.WithPersist(env.Persist),
		app.WithSessionExpiry(env.Jar.SessionExpiry),
		app.WithLogger(o.env.Logger),
	)

	return runner.Run(ctx, start)
}
