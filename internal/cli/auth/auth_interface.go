package auth

import (
	"net/http"
	"time"
)

// Cookie is the persisted form of one backend cookie
type Cookie struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Path     string     `json:"path,omitempty"`
	Domain   string     `json:"domain,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	HttpOnly bool       `json:"http_only,omitempty"`
}

// HTTPCookie converts the stored form back into a host-only http.Cookie
func (c Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if c.Expires != nil {
		hc.Expires = *c.Expires
	}
	return hc
}

// CookieStore defines the interface for session cookie persistence.
// This allows us to mock the keyring in tests
type CookieStore interface {
	SaveCookies(origin string, cookies []Cookie) error
	LoadCookies(origin string) ([]Cookie, error)
	DeleteCookies(origin string) error
}

// KeyringStore implements CookieStore using the OS keyring
type KeyringStore struct{}

var Default CookieStore = KeyringStore{}

func (KeyringStore) SaveCookies(origin string, cookies []Cookie) error {
	return SaveCookies(origin, cookies)
}

func (KeyringStore) LoadCookies(origin string) ([]Cookie, error) {
	return LoadCookies(origin)
}

func (KeyringStore) DeleteCookies(origin string) error {
	return DeleteCookies(origin)
}
