package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTFlow(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret-key-12345", time.Hour)
	require.NoError(t, err)

	userID := uuid.New().String()
	email := "test@example.com"

	token, err := issuer.Generate(userID, email)
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	a, err := NewTokenIssuer("secret-a", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := a.Generate("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTExpired(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	issuer.now = func() time.Time { return issued }
	token, err := issuer.Generate("user-1", "a@example.com")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	require.Error(t, err)

	_, err = (&TokenIssuer{secret: []byte("x"), ttl: time.Hour, now: time.Now}).Generate("", "a@example.com")
	require.Error(t, err)
}
