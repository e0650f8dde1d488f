package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <api-url>",
		Short: "Add an authentication backend to ./authfront.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0], cmd.OutOrStdout())
		},
	}
}

func runInit(rawURL string, out io.Writer) error {
	apiURL, err := config.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintln(out, "Found existing authfront.json")
	} else {
		cfg = &config.Config{
			Backends: []config.Backend{},
		}
		isNewConfig = true
	}

	backend, added := cfg.AddBackend(apiURL)
	if !added {
		fmt.Fprintf(out, "Backend %s already exists in authfront.json (%s)\n", apiURL, backend.Alias)
	} else {
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		if isNewConfig {
			fmt.Fprintf(out, "✓ Created ./authfront.json with backend %s (%s)\n", apiURL, backend.Alias)
		} else {
			fmt.Fprintf(out, "✓ Added backend %s (%s) to ./authfront.json\n", apiURL, backend.Alias)
		}
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'authfront register' or 'authfront login' to sign in")
	fmt.Fprintln(out, "  2. Run 'authfront dashboard' to see who you are signed in as")

	return nil
}
