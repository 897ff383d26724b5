package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("test-signing-key-0123456789abcdef"), time.Hour)

	for _, subjectID := range []int64{1, 42, 1 << 40} {
		token, expiresAt, err := tm.Issue(subjectID)
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		identity, err := tm.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, subjectID, identity.SubjectID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	tm := NewTokenManager([]byte("test-signing-key-0123456789abcdef"), time.Millisecond)

	token, _, err := tm.Issue(7)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := NewTokenManager([]byte("issuer-signing-key-0123456789abcd"), time.Hour)
	verifier := NewTokenManager([]byte("other-signing-key-0123456789abcde"), time.Hour)

	token, _, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	tm := NewTokenManager([]byte("test-signing-key-0123456789abcdef"), time.Hour)

	_, err := tm.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSharedKeyAcrossManagers(t *testing.T) {
	// Two processes configured with the same key accept each other's
	// tokens.
	key := []byte("shared-signing-key-0123456789abcd")
	first := NewTokenManager(key, time.Hour)
	second := NewTokenManager(key, time.Hour)

	token, _, err := first.Issue(99)
	require.NoError(t, err)

	identity, err := second.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(99), identity.SubjectID)
}
