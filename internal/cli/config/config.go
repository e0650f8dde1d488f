package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const ConfigFileName = "authfront.json"

// ErrNotFound is returned when no authfront.json exists up the directory tree
var ErrNotFound = errors.New(ConfigFileName + " not found")

// Backend represents an authentication backend the CLI can talk to
type Backend struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
}

// Config represents the project configuration file
type Config struct {
	Backends []Backend `json:"backends"`
}

// NormalizeURL validates a backend base URL and strips trailing slashes.
// A bare host[:port] is assumed to be http.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("backend URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid backend URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid backend URL %q: host is required", raw)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FindConfigFile searches for authfront.json in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find authfront.json or reach root
	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, currentDir)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetBackendByAlias returns a backend by its alias
func (c *Config) GetBackendByAlias(alias string) (*Backend, error) {
	for i := range c.Backends {
		if c.Backends[i].Alias == alias {
			return &c.Backends[i], nil
		}
	}
	return nil, fmt.Errorf("backend with alias '%s' not found", alias)
}

// GetBackendByURL returns a backend by its URL, ignoring trailing slashes
func (c *Config) GetBackendByURL(rawURL string) (*Backend, error) {
	want := strings.TrimRight(rawURL, "/")
	for i := range c.Backends {
		if strings.TrimRight(c.Backends[i].URL, "/") == want {
			return &c.Backends[i], nil
		}
	}
	return nil, fmt.Errorf("backend with URL '%s' not found in project config", rawURL)
}

// GetDefaultBackend returns the first backend in the list
func (c *Config) GetDefaultBackend() (*Backend, error) {
	if len(c.Backends) == 0 {
		return nil, fmt.Errorf("no backends configured in %s", ConfigFileName)
	}
	return &c.Backends[0], nil
}

// AddBackend appends a backend unless its URL is already present. The first
// backend is aliased "default", later ones "backend-N". It reports whether
// the config changed.
func (c *Config) AddBackend(rawURL string) (*Backend, bool) {
	if existing, err := c.GetBackendByURL(rawURL); err == nil {
		return existing, false
	}

	alias := "default"
	if len(c.Backends) > 0 {
		alias = fmt.Sprintf("backend-%d", len(c.Backends)+1)
	}

	c.Backends = append(c.Backends, Backend{URL: rawURL, Alias: alias})
	return &c.Backends[len(c.Backends)-1], true
}
