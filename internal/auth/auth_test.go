package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestIssueAndParseTokenRoundTrip(t *testing.T) {
	key := []byte("test-signing-key")
	playerID := uuid.New()

	token, err := IssueToken(key, playerID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, playerID, got)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, err := IssueToken([]byte("key-a"), uuid.New())
	require.NoError(t, err)

	_, err = ParseToken([]byte("key-b"), token)
	assert.Error(t, err)
}
