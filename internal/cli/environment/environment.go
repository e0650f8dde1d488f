// Package environment wires the pieces every front end needs: the resolved
// backend, a request client whose jar survives between runs, the cookie
// store behind that jar, and an auth store on top.
package environment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/authfront-dev/authfront/internal/cli/auth"
	"github.com/authfront-dev/authfront/internal/cli/backendselect"
	"github.com/authfront-dev/authfront/internal/cli/client"
	cliconfig "github.com/authfront-dev/authfront/internal/cli/config"
	"github.com/authfront-dev/authfront/internal/config"
	"github.com/authfront-dev/authfront/internal/session"
)

// Options override what would otherwise come from configuration
type Options struct {
	// BackendURL skips backend resolution entirely
	BackendURL string
	// BackendAlias picks a backend from authfront.json
	BackendAlias string
	// CookieStore replaces the configured store
	CookieStore auth.CookieStore
	// HTTPClient replaces the default transport
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Environment is an opened backend session
type Environment struct {
	BackendURL string
	Client     *client.Client
	Jar        *auth.PersistentJar
	Cookies    auth.CookieStore

	closeStore func() error
	logger     zerolog.Logger
}

// Open resolves the backend, restores its saved cookies and builds the client
func Open(cfg *config.Config, opts Options) (*Environment, error) {
	baseURL, err := ResolveBackendURL(cfg, opts.BackendURL, opts.BackendAlias)
	if err != nil {
		return nil, err
	}

	jar, err := auth.NewPersistentJar(baseURL)
	if err != nil {
		return nil, err
	}

	store, closeStore := opts.CookieStore, func() error { return nil }
	if store == nil {
		store, closeStore, err = auth.OpenStore(cfg.Session)
		if err != nil {
			return nil, err
		}
	}

	saved, err := store.LoadCookies(jar.Origin())
	if err != nil {
		closeStore()
		return nil, err
	}
	jar.Restore(saved)

	clientOpts := []client.Option{
		client.WithJar(jar),
		client.WithTimeout(cfg.Backend.RequestTimeout),
		client.WithLogger(opts.Logger),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(opts.HTTPClient))
	}

	c, err := client.New(baseURL, clientOpts...)
	if err != nil {
		closeStore()
		return nil, err
	}

	opts.Logger.Debug().
		Str("backend", baseURL).
		Int("restored_cookies", len(jar.Snapshot())).
		Msg("Backend session opened")

	return &Environment{
		BackendURL: baseURL,
		Client:     c,
		Jar:        jar,
		Cookies:    store,
		closeStore: closeStore,
		logger:     opts.Logger,
	}, nil
}

// ResolveBackendURL picks the backend base URL: an explicit URL first, then
// authfront.json (alias, user selection, single entry, prompt), then
// AUTHFRONT_API_URL.
func ResolveBackendURL(cfg *config.Config, explicitURL, alias string) (string, error) {
	if explicitURL != "" {
		return cliconfig.NormalizeURL(explicitURL)
	}

	projectConfig, err := cliconfig.LoadFromCurrentDir()
	switch {
	case errors.Is(err, cliconfig.ErrNotFound):
		if alias != "" {
			return "", fmt.Errorf("backend alias %q given but %s was not found\nRun 'authfront init <api-url>' to create one", alias, cliconfig.ConfigFileName)
		}
		return cliconfig.NormalizeURL(cfg.Backend.APIURL)
	case err != nil:
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := backendselect.ResolveBackend(projectConfig, alias)
	if err != nil {
		return "", err
	}

	if backend.URL == "" {
		return "", fmt.Errorf("backend URL is empty. Please edit %s and add a valid URL", cliconfig.ConfigFileName)
	}

	return cliconfig.NormalizeURL(backend.URL)
}

// NewSessionStore builds an auth store on the client. Logging out wipes the
// persisted cookies.
func (e *Environment) NewSessionStore(opts ...session.Option) *session.Store {
	base := []session.Option{
		session.WithLogger(e.logger),
		session.WithLogoutHook(e.Wipe),
	}
	return session.NewStore(e.Client, append(base, opts...)...)
}

// Persist saves the current jar contents
func (e *Environment) Persist() error {
	if err := e.Cookies.SaveCookies(e.Jar.Origin(), e.Jar.Snapshot()); err != nil {
		return err
	}
	return nil
}

// Wipe forgets the session locally and in the cookie store
func (e *Environment) Wipe() error {
	e.Jar.Clear()
	return e.Cookies.DeleteCookies(e.Jar.Origin())
}

// Close releases the cookie store
func (e *Environment) Close() error {
	return e.closeStore()
}
