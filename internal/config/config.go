package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Cookie store backends
const (
	CookieStoreKeyring = "keyring"
	CookieStoreSQLite  = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Backend Configuration
	Backend BackendConfig

	// Session persistence
	Session SessionConfig

	// Web front end
	Web WebConfig

	// Logging Configuration
	Logging LoggingConfig
}

// BackendConfig describes the authentication backend the client talks to
type BackendConfig struct {
	APIURL         string        `env:"AUTHFRONT_API_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// SessionConfig controls where backend cookies are persisted between runs
type SessionConfig struct {
	CookieStore  string `env:"COOKIE_STORE" envDefault:"keyring"` // keyring, sqlite
	CookieDBPath string `env:"COOKIE_DB_PATH" envDefault:"authfront.sqlite"`
}

// WebConfig holds the local web front end configuration
type WebConfig struct {
	Address         string `env:"WEB_ADDRESS" envDefault:"127.0.0.1:5173"`
	RefreshSchedule string `env:"REFRESH_SCHEDULE" envDefault:"@every 5m"` // cron spec, empty disables revalidation

	// The server holds one backend session; by default only this machine may use it
	AllowRemote    bool     `env:"WEB_ALLOW_REMOTE" envDefault:"false"`
	AllowedOrigins []string `env:"WEB_ALLOWED_ORIGINS" envSeparator:","` // extra origins trusted to post forms
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values env parsing cannot express
func (c *Config) Validate() error {
	switch c.Session.CookieStore {
	case CookieStoreKeyring, CookieStoreSQLite:
	default:
		return fmt.Errorf("invalid COOKIE_STORE %q, must be one of: %s, %s",
			c.Session.CookieStore, CookieStoreKeyring, CookieStoreSQLite)
	}

	if c.Backend.APIURL == "" {
		return fmt.Errorf("AUTHFRONT_API_URL must not be empty")
	}

	if c.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}
