package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims read from a JWT-shaped session cookie
type SessionClaims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// InspectSessionToken reads the claims of a JWT session cookie without
// verifying its signature; the signing key stays with the backend.
func InspectSessionToken(token string) (*SessionClaims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("session token is not a JWT")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	out := &SessionClaims{}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}

	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}

	return out, nil
}

// TokenExpired reports whether value is a JWT whose exp is not after now.
// Opaque values (JSESSIONID and friends) never expire here.
func TokenExpired(value string, now time.Time) bool {
	claims, err := InspectSessionToken(value)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !claims.ExpiresAt.After(now)
}
