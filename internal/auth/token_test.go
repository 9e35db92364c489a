package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken("secret", time.Hour, Claims{UserID: "u-1", Role: "professor"})
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "professor", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewAccessToken("secret", time.Hour, Claims{UserID: "u-1", Role: "student"})
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := NewAccessToken("secret", -time.Minute, Claims{UserID: "u-1", Role: "student"})
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	require.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not-a-token")
	require.Error(t, err)
}
