package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/authfront-dev/authfront/internal/config"
)

const testOrigin = "http://localhost:8080"

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()

	store := KeyringStore{}
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	cookies := []Cookie{
		{Name: "JSESSIONID", Value: "abc", Path: "/", HttpOnly: true, Expires: &exp},
		{Name: "XSRF-TOKEN", Value: "csrf", Path: "/"},
	}
	require.NoError(t, store.SaveCookies(testOrigin, cookies))

	loaded, err := store.LoadCookies(testOrigin)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "abc", loaded[0].Value)
	assert.True(t, loaded[0].HttpOnly)
	assert.True(t, exp.Equal(*loaded[0].Expires))

	require.NoError(t, store.DeleteCookies(testOrigin))

	loaded, err = store.LoadCookies(testOrigin)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestKeyringStore_MissingEntries(t *testing.T) {
	keyring.MockInit()

	loaded, err := LoadCookies("http://never-logged-in:9000")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, DeleteCookies("http://never-logged-in:9000"))
}

func TestKeyringStore_ScopedByOrigin(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, SaveCookies("http://a:1", []Cookie{{Name: "s", Value: "a"}}))
	require.NoError(t, SaveCookies("http://b:1", []Cookie{{Name: "s", Value: "b"}}))

	loaded, err := LoadCookies("http://a:1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].Value)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "cookies.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	require.NoError(t, store.SaveCookies(testOrigin, []Cookie{
		{Name: "XSRF-TOKEN", Value: "csrf"},
		{Name: "JSESSIONID", Value: "abc", Path: "/", HttpOnly: true, Expires: &future},
		{Name: "stale", Value: "old", Expires: &past},
	}))
	require.NoError(t, store.SaveCookies("http://other:1", []Cookie{{Name: "JSESSIONID", Value: "other"}}))

	loaded, err := store.LoadCookies(testOrigin)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "JSESSIONID", loaded[0].Name)
	assert.True(t, loaded[0].HttpOnly)
	assert.Equal(t, "XSRF-TOKEN", loaded[1].Name)
	assert.Equal(t, "/", loaded[1].Path)

	// Saving replaces the previous set
	require.NoError(t, store.SaveCookies(testOrigin, []Cookie{{Name: "JSESSIONID", Value: "rotated", Path: "/"}}))
	loaded, err = store.LoadCookies(testOrigin)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "rotated", loaded[0].Value)

	require.NoError(t, store.SaveCookies(testOrigin, nil))
	loaded, err = store.LoadCookies(testOrigin)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, store.DeleteCookies("http://other:1"))
	loaded, err = store.LoadCookies("http://other:1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSQLiteStore_OwnerOnlyFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	path := filepath.Join(t.TempDir(), "cookies.sqlite")
	// An existing, world-readable file is tightened too
	require.NoError(t, os.WriteFile(path, nil, 0644))

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SaveCookies(testOrigin, []Cookie{{Name: "JSESSIONID", Value: "secret-session", Path: "/"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSQLiteStore_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.sqlite")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("not a database "), 512), 0600))

	store, err := OpenSQLiteStore(path)
	assert.Error(t, err)
	assert.Nil(t, store)

	// No handle is left holding the file
	assert.NoError(t, os.Remove(path))
}

func TestOpenStore(t *testing.T) {
	store, closeFn, err := OpenStore(config.SessionConfig{CookieStore: config.CookieStoreKeyring})
	require.NoError(t, err)
	assert.Equal(t, Default, store)
	assert.NoError(t, closeFn())

	store, closeFn, err = OpenStore(config.SessionConfig{
		CookieStore:  config.CookieStoreSQLite,
		CookieDBPath: filepath.Join(t.TempDir(), "c.sqlite"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = OpenStore(config.SessionConfig{CookieStore: "memcache"})
	assert.Error(t, err)
}
