package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/authfront-dev/authfront/internal/cli/app"
	"github.com/authfront-dev/authfront/internal/cli/auth"
	"github.com/authfront-dev/authfront/internal/cli/environment"
	"github.com/authfront-dev/authfront/internal/config"
	"github.com/authfront-dev/authfront/internal/logger"
)

var errNonInteractive = errors.New("stdin is not a terminal")

// Option injects dependencies into a command run
type Option func(*runOptions)

type runOptions struct {
	cfg          *config.Config
	env          environment.Options
	out          io.Writer
	browser      func(url string) error
	readPassword func(prompt string) (string, error)
	prompter     app.Prompter
}

// WithConfig replaces the environment-derived configuration
func WithConfig(cfg *config.Config) Option {
	return func(o *runOptions) {
		o.cfg = cfg
	}
}

// WithBackend talks to url instead of resolving a backend
func WithBackend(url string) Option {
	return func(o *runOptions) {
		o.env.BackendURL = url
	}
}

// WithBackendAlias picks a backend from authfront.json
func WithBackendAlias(alias string) Option {
	return func(o *runOptions) {
		o.env.BackendAlias = alias
	}
}

// WithCookieStore replaces the configured cookie store
func WithCookieStore(store auth.CookieStore) Option {
	return func(o *runOptions) {
		o.env.CookieStore = store
	}
}

// WithHTTPClient replaces the HTTP transport
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *runOptions) {
		o.env.HTTPClient = httpClient
	}
}

// WithOutput redirects command output
func WithOutput(out io.Writer) Option {
	return func(o *runOptions) {
		o.out = out
	}
}

// WithBrowser replaces the system browser launcher
func WithBrowser(fn func(url string) error) Option {
	return func(o *runOptions) {
		o.browser = fn
	}
}

// WithPasswordReader replaces the terminal password prompt
func WithPasswordReader(fn func(prompt string) (string, error)) Option {
	return func(o *runOptions) {
		o.readPassword = fn
	}
}

// WithPrompter replaces the interactive prompts
func WithPrompter(p app.Prompter) Option {
	return func(o *runOptions) {
		o.prompter = p
	}
}

func buildOptions(opts []Option) (*runOptions, error) {
	o := &runOptions{
		out:      os.Stdout,
		browser:  openBrowser,
		prompter: app.PromptUI{},
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.readPassword == nil {
		out := o.out
		o.readPassword = func(prompt string) (string, error) {
			return readPasswordFromTerminal(out, prompt)
		}
	}

	if o.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		o.cfg = cfg
	}

	o.env.Logger = logger.GetLogger()

	return o, nil
}

// open resolves the backend and restores its session
func (o *runOptions) open() (*environment.Environment, error) {
	return environment.Open(o.cfg, o.env)
}

// commonOptions reads the root persistent flags
func commonOptions(cmd *cobra.Command) []Option {
	opts := []Option{WithOutput(cmd.OutOrStdout())}
	if alias, _ := cmd.Flags().GetString("backend"); alias != "" {
		opts = append(opts, WithBackendAlias(alias))
	}
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		opts = append(opts, WithBackend(apiURL))
	}
	return opts
}

func readPasswordFromTerminal(out io.Writer, prompt string) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errNonInteractive
	}

	fmt.Fprint(out, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// persistSession saves the jar, warning instead of failing the command
func persistSession(out io.Writer, env *environment.Environment) {
	if err := env.Persist(); err != nil {
		fmt.Fprintf(out, "⚠ Failed to save session: %v\n", err)
	}
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func (o *runOptions) output() io.Writer {
	if o.out == nil {
		return os.Stdout
	}
	return o.out
}
