package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := m.Generate(userID, "maria@farm.example")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	_, err := m.Verify("not.a.token")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	// A token signed with another secret fails verification.
	other := NewTokenManager("other-secret", time.Hour)
	token, err := other.Generate(userID, "maria@farm.example")
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, err := m.Generate(uuid.New(), "maria@farm.example")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
