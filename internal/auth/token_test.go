package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret, err := NewSessionSecret()
	require.NoError(t, err)
	require.Len(t, secret, 64)

	token := FormatToken(42, secret)
	userID, parsed, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, 42, userID)
	require.Equal(t, secret, parsed)
}

func TestNewSessionSecretIsUnique(t *testing.T) {
	a, err := NewSessionSecret()
	require.NoError(t, err)
	b, err := NewSessionSecret()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"no-separator",
		"42.",
		".secret",
		"abc.secret",
		"-1.secret",
		"0.secret",
	}
	for _, token := range cases {
		_, _, err := ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
