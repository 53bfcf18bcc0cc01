package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("u-1", "admin")
	require.NoError(t, err)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateRejectsTampered(t *testing.T) {
	tok, _ := GenerateToken("u-1", "user")
	_, err := ValidateToken(tok + "x")
	assert.Error(t, err)
}

func TestExpiry(t *testing.T) {
	past := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	s, err := past.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	exp, ok, err := Expiry(s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, exp.Before(time.Now()))

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).
		SignedString([]byte("k"))
	_, ok, err = Expiry(noExp)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Expiry("opaque-session-token")
	assert.ErrorIs(t, err, ErrNotJWT)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "secret1"))
	assert.False(t, CheckPassword(h, "secret2"))
}
