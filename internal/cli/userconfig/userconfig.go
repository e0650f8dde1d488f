package userconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "authfront"
	configFileName = "config.yaml"

	// ConfigHomeEnv overrides the directory holding config.yaml
	ConfigHomeEnv = "AUTHFRONT_CONFIG_HOME"
)

// UserConfig represents the user's local configuration stored in ~/.config/authfront/config.yaml
type UserConfig struct {
	SelectedBackendURL string `yaml:"selected_backend_url"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	if dir := os.Getenv(ConfigHomeEnv); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// If config doesn't exist, return empty config
		if os.IsNotExist(err) {
			return &UserConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedBackend updates the selected backend URL and saves the config
func SetSelectedBackend(backendURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedBackendURL = backendURL
	return Save(cfg)
}

// GetSelectedBackend returns the selected backend URL, or empty string if not set
func GetSelectedBackend() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedBackendURL, nil
}
