package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/cli/commands"
	"github.com/authfront-dev/authfront/internal/config"
	"github.com/authfront-dev/authfront/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "authfront",
		Short: "authfront - sign in to a cookie-session auth backend",
		Long: `authfront CLI - Log in, register and inspect your session.

authfront talks to an authentication backend over HTTP, keeping its
session and CSRF cookies in your OS keyring (or a local SQLite file)
between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logging is best effort; a broken config surfaces in the command itself
			if cfg, err := config.Load(); err == nil {
				logger.InitWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
			}
		},
	}

	rootCmd.PersistentFlags().String("backend", "", "Backend alias from authfront.json")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL, bypassing authfront.json")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "authfront version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectBackendCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewDashboardCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewOpenCmd())
	rootCmd.AddCommand(commands.NewServeCmd(version))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
