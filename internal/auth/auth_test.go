package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	verifier := NewJWTVerifier("test-secret-at-least-16-chars")

	token, err := verifier.Issue("user@example.com", time.Hour)
	require.NoError(t, err)

	session, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestJWTVerifier_Rejections(t *testing.T) {
	verifier := NewJWTVerifier("test-secret-at-least-16-chars")

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTVerifier("another-secret-16-chars-long")
		token, err := other.Issue("user@example.com", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := verifier.Issue("user@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}
