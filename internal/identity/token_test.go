package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectSessionToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	claims, err := InspectSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestInspectSessionToken_Opaque(t *testing.T) {
	_, err := InspectSessionToken("9F3A1C0D2E")
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	expired := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	live := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})
	noExp := signedToken(t, jwt.MapClaims{"sub": "x"})

	assert.True(t, TokenExpired(expired, now))
	assert.False(t, TokenExpired(live, now))
	assert.False(t, TokenExpired(noExp, now))
	assert.False(t, TokenExpired("JSESSIONID-opaque", now))
}
