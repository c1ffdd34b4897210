package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

// ErrSessionSuperseded means the token belonged to this user but a newer
// login has rotated it. Most recent login wins; older sessions are kicked.
var ErrSessionSuperseded = errors.New("session superseded by a newer login")

// Guard validates presented session tokens against the single current token
// stored on the identity. It is consulted once per REST request and once at
// websocket connect; established sockets are never re-checked.
type Guard struct {
	users repositories.UserRepository
}

// NewGuard constructs a Guard.
func NewGuard(users repositories.UserRepository) *Guard {
	return &Guard{users: users}
}

// Validate resolves a client credential to its user. Returns
// ErrSessionSuperseded when the secret no longer matches the stored token,
// ErrInvalidToken for malformed tokens or unknown users.
func (g *Guard) Validate(ctx context.Context, token string) (models.User, error) {
	userID, secret, err := ParseToken(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := g.users.GetUserByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, err
	}

	if user.SessionToken == nil {
		return models.User{}, ErrSessionSuperseded
	}
	if subtle.ConstantTimeCompare([]byte(*user.SessionToken), []byte(secret)) != 1 {
		return models.User{}, ErrSessionSuperseded
	}
	return user, nil
}
