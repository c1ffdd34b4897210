package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidToken covers malformed tokens and tokens for unknown users.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionSecret returns a fresh 256-bit session secret as hex.
func NewSessionSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// FormatToken builds the client-facing credential "<uid>.<secret>". Carrying
// the user id lets the guard load the identity and compare the secret against
// the single currently-valid token stored on it.
func FormatToken(userID int, secret string) string {
	return strconv.Itoa(userID) + "." + secret
}

// ParseToken splits a client credential back into user id and secret.
func ParseToken(token string) (int, string, error) {
	idPart, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return 0, "", ErrInvalidToken
	}
	userID, err := strconv.Atoi(idPart)
	if err != nil || userID <= 0 {
		return 0, "", ErrInvalidToken
	}
	return userID, secret, nil
}
