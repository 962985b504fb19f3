package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseTokens(t *testing.T) {
	maker := NewMaker("secret", 15*time.Minute, time.Hour)

	access, refresh, err := maker.GenerateTokens("user1", "owner")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := maker.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user1", claims.Username)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	claims, err = maker.ParseToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestParseToken_WrongKey(t *testing.T) {
	maker := NewMaker("secret", 15*time.Minute, time.Hour)
	other := NewMaker("another-secret", 15*time.Minute, time.Hour)

	access, _, err := maker.GenerateTokens("user1", "user")
	require.NoError(t, err)

	_, err = other.ParseToken(access)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	maker := NewMaker("secret", -time.Minute, time.Hour)

	access, _, err := maker.GenerateTokens("user1", "user")
	require.NoError(t, err)

	_, err = maker.ParseToken(access)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	maker := NewMaker("secret", 15*time.Minute, time.Hour)
	_, err := maker.ParseToken("not-a-token")
	assert.Error(t, err)
}
