package auth

import (
	"fmt"

	"github.com/authfront-dev/authfront/internal/config"
)

// OpenStore returns the CookieStore selected by configuration together with
// a function releasing its resources
func OpenStore(cfg config.SessionConfig) (CookieStore, func() error, error) {
	switch cfg.CookieStore {
	case config.CookieStoreSQLite:
		store, err := OpenSQLiteStore(cfg.CookieDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.CookieStoreKeyring, "":
		return Default, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cookie store %q", cfg.CookieStore)
	}
}
