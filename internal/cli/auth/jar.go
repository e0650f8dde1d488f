package auth

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/authfront-dev/authfront/internal/identity"
)

// PersistentJar is an http.CookieJar that also remembers every cookie the
// backend origin sets, so the session can be saved to a CookieStore and
// restored on the next run.
type PersistentJar struct {
	mu      sync.Mutex
	origin  *url.URL
	jar     *cookiejar.Jar
	cookies map[string]Cookie
	now     func() time.Time
}

// NewPersistentJar creates an empty jar scoped to the backend origin
func NewPersistentJar(origin string) (*PersistentJar, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: scheme and host are required", origin)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &PersistentJar{
		origin:  &url.URL{Scheme: u.Scheme, Host: u.Host},
		jar:     jar,
		cookies: map[string]Cookie{},
		now:     time.Now,
	}, nil
}

// Origin returns scheme://host[:port] of the backend, the key used in CookieStores
func (j *PersistentJar) Origin() string {
	return j.origin.String()
}

// SetCookies implements http.CookieJar
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	if !strings.EqualFold(u.Hostname(), j.origin.Hostname()) {
		return
	}

	now := j.now()
	for _, c := range cookies {
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}
		key := cookieKey(c.Name, path)

		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			delete(j.cookies, key)
			continue
		}

		stored := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge > 0:
			exp := now.Add(time.Duration(c.MaxAge) * time.Second)
			stored.Expires = &exp
		case !c.Expires.IsZero():
			exp := c.Expires
			stored.Expires = &exp
		}
		j.cookies[key] = stored
	}
}

// Cookies implements http.CookieJar
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Snapshot returns the live origin cookies, ordered by name then path
func (j *PersistentJar) Snapshot() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	out := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if c.Expires != nil && !c.Expires.After(now) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].Path < out[b].Path
	})
	return out
}

// Restore loads previously saved cookies. Expired cookies, including JWT
// session cookies whose exp has passed, are dropped. Restored cookies are
// host-only for the origin.
func (j *PersistentJar) Restore(cookies []Cookie) {
	now := j.now()

	restored := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Expires != nil && !c.Expires.After(now) {
			continue
		}
		if identity.TokenExpired(c.Value, now) {
			continue
		}
		c.Domain = ""
		if c.Path == "" {
			c.Path = "/"
		}
		restored = append(restored, c.HTTPCookie())
	}

	if len(restored) > 0 {
		j.SetCookies(j.origin, restored)
	}
}

// Clear forgets every cookie
func (j *PersistentJar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()

	// cookiejar.New only fails on a bad PublicSuffixList
	jar, _ := cookiejar.New(nil)
	j.jar = jar
	j.cookies = map[string]Cookie{}
}

// SessionExpiry returns the earliest known expiry of the session: the exp
// claim of JWT-shaped cookies, or the Expires of HttpOnly cookies.
func (j *PersistentJar) SessionExpiry() (time.Time, bool) {
	var earliest time.Time
	for _, c := range j.Snapshot() {
		var exp time.Time
		if claims, err := identity.InspectSessionToken(c.Value); err == nil && !claims.ExpiresAt.IsZero() {
			exp = claims.ExpiresAt
		} else if c.HttpOnly && c.Expires != nil {
			exp = *c.Expires
		}
		if exp.IsZero() {
			continue
		}
		if earliest.IsZero() || exp.Before(earliest) {
			earliest = exp
		}
	}
	return earliest, !earliest.IsZero()
}

func cookieKey(name, path string) string {
	return name + "\x00" + path
}

// defaultPath follows RFC 6265 section 5.1.4
func defaultPath(path string) string {
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}
