package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Backend.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, CookieStoreKeyring, cfg.Session.CookieStore)
	assert.Equal(t, "127.0.0.1:5173", cfg.Web.Address)
	assert.False(t, cfg.Web.AllowRemote)
	assert.Empty(t, cfg.Web.AllowedOrigins)
	assert.Equal(t, "@every 5m", cfg.Web.RefreshSchedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("AUTHFRONT_API_URL", "https://auth.example.com")
	t.Setenv("COOKIE_STORE", "sqlite")
	t.Setenv("COOKIE_DB_PATH", "/tmp/cookies.sqlite")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("WEB_ADDRESS", ":5173")
	t.Setenv("WEB_ALLOW_REMOTE", "true")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://ui.example.com,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com", cfg.Backend.APIURL)
	assert.Equal(t, CookieStoreSQLite, cfg.Session.CookieStore)
	assert.Equal(t, "/tmp/cookies.sqlite", cfg.Session.CookieDBPath)
	assert.Equal(t, 5*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":5173", cfg.Web.Address)
	assert.True(t, cfg.Web.AllowRemote)
	assert.Equal(t, []string{"https://ui.example.com", "http://localhost:3000"}, cfg.Web.AllowedOrigins)
}

func TestLoad_InvalidCookieStore(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("COOKIE_STORE", "memcached")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid COOKIE_STORE")
}
