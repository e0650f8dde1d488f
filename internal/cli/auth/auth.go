package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "authfront-cli"
)

// getKeyringKey returns a unique key for storing session cookies per backend origin
func getKeyringKey(origin string) string {
	return fmt.Sprintf("cookies-%s", origin)
}

// SaveCookies persists the session cookies securely in the OS keychain/credential manager
func SaveCookies(origin string, cookies []Cookie) error {
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	key := getKeyringKey(origin)
	if err := keyring.Set(service, key, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadCookies retrieves the session cookies from the OS keychain/credential manager.
// A backend that was never logged into has no cookies and no error.
func LoadCookies(origin string) ([]Cookie, error) {
	key := getKeyringKey(origin)
	data, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal([]byte(data), &cookies); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	return cookies, nil
}

// DeleteCookies removes the session cookies from the OS keychain/credential manager
func DeleteCookies(origin string) error {
	key := getKeyringKey(origin)
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
