package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("test-secret", "user-123", "", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Sub)
	assert.Equal(t, RoleUser, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_UniqueJTIs(t *testing.T) {
	t1, err := GenerateToken("s", "u", RoleUser, time.Hour)
	require.NoError(t, err)
	t2, err := GenerateToken("s", "u", RoleUser, time.Hour)
	require.NoError(t, err)

	c1, _ := ParseToken("s", t1)
	c2, _ := ParseToken("s", t2)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestParseToken(t *testing.T) {
	secret := "test-secret-key"

	t.Run("invalid signature", func(t *testing.T) {
		token, err := GenerateToken("wrong-secret", "user-123", RoleUser, time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateToken(secret, "user-123", RoleUser, -time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := ParseToken(secret, "invalid.token.here")
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := Claims{Role: RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		c := Claims{Sub: "user-123", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})
}

func TestSessionFromToken(t *testing.T) {
	token, err := GenerateToken("secret", "user-9", RoleAdmin, time.Hour)
	require.NoError(t, err)

	s, err := SessionFromToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, Session{UserID: "user-9", Role: RoleAdmin}, s)
	assert.True(t, s.Valid())
}

func TestRequire(t *testing.T) {
	assert.ErrorIs(t, Require(Session{}), ErrNoSession)
	assert.NoError(t, Require(Session{UserID: "u"}))
}
