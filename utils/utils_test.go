package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Minute)
	require.NoError(t, err)

	userID, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestGenerateRoomID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateRoomID()
		require.NoError(t, err)
		assert.Len(t, id, roomIDLength)
		assert.Empty(t, strings.Trim(id, roomIDAlphabet))
		assert.False(t, seen[id])
		seen[id] = true
	}
}
