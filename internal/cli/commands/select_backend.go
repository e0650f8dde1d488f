package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/cli/backendselect"
	"github.com/authfront-dev/authfront/internal/cli/config"
	"github.com/authfront-dev/authfront/internal/cli/userconfig"
)

// NewSelectBackendCmd creates the select-backend command
func NewSelectBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-backend [url-or-alias]",
		Short: "Select the backend to use for commands",
		Long: `Select the backend to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ authfront select-backend                        # Interactive selection
  $ authfront select-backend http://localhost:8080  # Select by URL
  $ authfront select-backend staging                # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectBackend(urlOrAlias, commonOptions(cmd)...)
		},
	}

	return cmd
}

func runSelectBackend(urlOrAlias string, opts ...Option) error {
	o := &runOptions{}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'authfront init <api-url>' to create a configuration file", err)
	}

	var backend *config.Backend
	if urlOrAlias != "" {
		backend, err = backendselect.GetBackendByURLOrAlias(cfg, urlOrAlias)
	} else {
		backend, err = backendselect.PromptBackendSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedBackend(backend.URL); err != nil {
		return fmt.Errorf("failed to save selected backend: %w", err)
	}

	fmt.Fprintf(o.output(), "Selected backend: %s (%s)\n", backend.Alias, backend.URL)
	return nil
}
