package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectedBackend_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	t.Setenv(ConfigHomeEnv, dir)

	selected, err := GetSelectedBackend()
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.NoError(t, SetSelectedBackend("http://localhost:8080"))

	selected, err = GetSelectedBackend()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", selected)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "selected_backend_url: http://localhost:8080")
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigHomeEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("selected_backend_url: [unclosed"), 0644))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse user config file")
}

func TestGetConfigPath_DefaultsToHome(t *testing.T) {
	t.Setenv(ConfigHomeEnv, "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "authfront", "config.yaml"), path)
}
