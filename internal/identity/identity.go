// Package identity models the signed-in principal as asserted by the backend.
package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates the identity variants.
type Kind string

const (
	// KindPassword is an email/password account owned by the backend.
	KindPassword Kind = "password"
	// KindGitHub is a principal federated through GitHub.
	KindGitHub Kind = "github"
)

var (
	// ErrNotAuthenticated is returned when the backend reports no session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnsupportedKind is returned for a type or provider outside the known variants.
	ErrUnsupportedKind = errors.New("unsupported identity type")
)

// Identity is the signed-in user. A nil *Identity means unauthenticated; a
// non-nil one always has a Login.
type Identity struct {
	Kind      Kind   `json:"type"`
	ID        string `json:"id,omitempty"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

// Federated reports whether the identity came from an external provider.
func (i *Identity) Federated() bool {
	return i != nil && i.Kind == KindGitHub
}

// DisplayName is the name shown in greetings.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Name != "" {
		return i.Name
	}
	return i.Login
}

// userPayload mirrors GET /api/user. GitHub ids are numeric, local ids are strings.
type userPayload struct {
	Error     string          `json:"error"`
	Type      string          `json:"type"`
	Provider  string          `json:"provider"`
	ID        json.RawMessage `json:"id"`
	Login     string          `json:"login"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	AvatarURL string          `json:"avatar_url"`
}

// Decode parses a /api/user response body. An {"error": ...} payload, a body
// that is not a user object (such as a login page) or a payload without any
// usable login yields an error wrapping ErrNotAuthenticated.
func Decode(data []byte) (*Identity, error) {
	var p userPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: failed to decode user payload: %w", ErrNotAuthenticated, err)
	}

	if p.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthenticated, p.Error)
	}

	kind, err := kindOf(p)
	if err != nil {
		return nil, err
	}

	id := &Identity{
		Kind:      kind,
		ID:        rawID(p.ID),
		Login:     p.Login,
		Name:      p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}

	switch id.Kind {
	case KindPassword:
		// Local accounts are addressed by email
		if id.Login == "" {
			id.Login = id.Email
		}
		id.AvatarURL = ""
	case KindGitHub:
		id.Provider = string(id.Kind)
	}

	if id.Login == "" {
		return nil, fmt.Errorf("%w: user payload has no login", ErrNotAuthenticated)
	}

	return id, nil
}

func kindOf(p userPayload) (Kind, error) {
	explicit := strings.ToLower(strings.TrimSpace(p.Type))
	if explicit == "" {
		explicit = strings.ToLower(strings.TrimSpace(p.Provider))
	}

	switch explicit {
	case "github":
		return KindGitHub, nil
	case "password", "local", "email":
		return KindPassword, nil
	case "":
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedKind, explicit)
	}

	// Untagged payloads: GitHub principals carry login and avatar_url
	if p.Login != "" && p.AvatarURL != "" {
		return KindGitHub, nil
	}
	return KindPassword, nil
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}
