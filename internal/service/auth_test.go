package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) *AdminAuthService {
	t.Helper()
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	auth, err := NewAdminAuthService("admin", hash, "test-secret", time.Hour)
	require.NoError(t, err)
	return auth
}

func TestLoginAndVerify(t *testing.T) {
	auth := newAuth(t)
	now := time.Now()

	token, expiresAt, err := auth.Login(" admin ", "correct horse", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuth(t)

	_, _, err := auth.Login("admin", "wrong", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login("root", "correct horse", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	auth := newAuth(t)
	now := time.Now()

	expired, err := auth.GenerateJWT("admin", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = auth.VerifyJWT(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewAdminAuthService("admin", "", "other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateJWT("admin", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = auth.VerifyJWT(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongUser, err := auth.GenerateJWT("intruder", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = auth.VerifyJWT(wrongUser)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.VerifyJWT(unsigned)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestDevelopmentDefaultPassword(t *testing.T) {
	auth, err := NewAdminAuthService("admin", "", "secret", time.Hour)
	require.NoError(t, err)

	_, _, err = auth.Login("admin", "admin", time.Now())
	assert.NoError(t, err)

	_, err = NewAdminAuthService("admin", "", "", time.Hour)
	assert.Error(t, err)
}
