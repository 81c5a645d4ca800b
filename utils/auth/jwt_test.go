package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: time.Hour,
		Issuer:        "mindmeld-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(time.Hour)

	issued, err := m.GenerateAccessToken(42, "manager", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.JTI)

	claims, err := m.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, issued.JTI, claims.ID)
}

func TestExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute)

	issued, err := m.GenerateAccessToken(1, "user", 0)
	require.NoError(t, err)

	_, err = m.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	issued, err := newTestManager(time.Hour).GenerateAccessToken(1, "user", 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another", Expiry: time.Hour})
	_, err = other.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager(time.Hour)

	refresh, err := m.GenerateRefreshToken(7, "user", 1)
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(refresh.Token, "user", 1)
	require.NoError(t, err)
	claims, err := m.ValidateToken(access.Token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	// bumped token version invalidates the refresh token
	_, err = m.RefreshAccessToken(refresh.Token, "user", 2)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// access tokens cannot be used as refresh tokens
	_, err = m.RefreshAccessToken(access.Token, "user", 1)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	Cost = 4
	defer func() { Cost = DefaultCost }()

	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "correct horse"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong horse"), ErrPasswordMismatch)
}
