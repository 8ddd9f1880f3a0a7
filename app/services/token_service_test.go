package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-0123"

func newTestTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(ttl, "yatagarasu", "yatagarasu-api", false, "", "", testSecret)
	require.NoError(t, err)
	return svc
}

func TestTokenService_ValidateToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.GenerateAccessToken("user-42")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestTokenService_ExpiredToken(t *testing.T) {
	// Negative TTL mints a token that is already expired
	svc := newTestTokenService(t, -time.Hour)

	token, err := svc.GenerateAccessToken("user-42")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongSignature(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	other, err := NewTokenService(time.Hour, "yatagarasu", "yatagarasu-api", false, "", "", "another-secret-key-that-is-long-enough")
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("user-42")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_NumericUserID(t *testing.T) {
	// Tokens minted by the legacy identity service carry userId as a number
	svc := newTestTokenService(t, time.Hour)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": float64(1234),
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "1234", claims.UserID)
}

func TestTokenService_MissingUserID(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
