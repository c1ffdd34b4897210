package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pictochat-service/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
)

const userColumns = `id, username, password_hash, profile_pic, chat_color, registered_on, last_username_change, message_count, session_token, is_admin`

// UserRepository abstracts the user directory.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash, sessionToken string) (models.User, error)
	GetUserByID(ctx context.Context, userID int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	RotateSessionToken(ctx context.Context, userID int, token string) error
	ClearSessionToken(ctx context.Context, userID int) error
	IncrementMessageCount(ctx context.Context, userID int) error
	DecrementMessageCount(ctx context.Context, userID int) error
	UpdateChatColor(ctx context.Context, userID int, color string) error
	UpdateProfilePic(ctx context.Context, userID int, profilePic string) error
	ChangeUsername(ctx context.Context, userID int, username string, changedAt time.Time) error
	ColorsByUsername(ctx context.Context, usernames []string) (map[string]string, error)
	SetAdmin(ctx context.Context, userID int, isAdmin bool) error
	CountUsers(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a new user with its initial session token.
func (r *UserRepo) CreateUser(ctx context.Context, username, passwordHash, sessionToken string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`INSERT INTO users (username, password_hash, session_token) VALUES ($1, $2, $3) RETURNING `+userColumns,
		username, passwordHash, sessionToken)
	if isUniqueViolation(err) {
		return models.User{}, ErrUsernameTaken
	}
	return user, err
}

// GetUserByID fetches a user by id.
func (r *UserRepo) GetUserByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByUsername fetches a user by its unique lowercase username.
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// RotateSessionToken overwrites the stored session token. Every connection
// still holding the previous token becomes permanently invalid.
func (r *UserRepo) RotateSessionToken(ctx context.Context, userID int, token string) error {
	return r.execOne(ctx, `UPDATE users SET session_token=$2 WHERE id=$1`, userID, token)
}

// ClearSessionToken invalidates the current session on logout.
func (r *UserRepo) ClearSessionToken(ctx context.Context, userID int) error {
	return r.execOne(ctx, `UPDATE users SET session_token=NULL WHERE id=$1`, userID)
}

// IncrementMessageCount bumps the per-user message counter.
func (r *UserRepo) IncrementMessageCount(ctx context.Context, userID int) error {
	return r.execOne(ctx, `UPDATE users SET message_count = message_count + 1 WHERE id=$1`, userID)
}

// DecrementMessageCount undoes an increment after a failed message save.
func (r *UserRepo) DecrementMessageCount(ctx context.Context, userID int) error {
	return r.execOne(ctx, `UPDATE users SET message_count = GREATEST(message_count - 1, 0) WHERE id=$1`, userID)
}

// UpdateChatColor sets the display color.
func (r *UserRepo) UpdateChatColor(ctx context.Context, userID int, color string) error {
	return r.execOne(ctx, `UPDATE users SET chat_color=$2 WHERE id=$1`, userID, color)
}

// UpdateProfilePic sets the profile picture reference.
func (r *UserRepo) UpdateProfilePic(ctx context.Context, userID int, profilePic string) error {
	return r.execOne(ctx, `UPDATE users SET profile_pic=$2 WHERE id=$1`, userID, profilePic)
}

// ChangeUsername renames the user and records when, for the rename cooldown.
func (r *UserRepo) ChangeUsername(ctx context.Context, userID int, username string, changedAt time.Time) error {
	err := r.execOne(ctx, `UPDATE users SET username=$2, last_username_change=$3 WHERE id=$1`, userID, username, changedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// ColorsByUsername resolves chat colors for a set of usernames in one query.
func (r *UserRepo) ColorsByUsername(ctx context.Context, usernames []string) (map[string]string, error) {
	colors := make(map[string]string, len(usernames))
	if len(usernames) == 0 {
		return colors, nil
	}

	query, args, err := sqlx.In(`SELECT username, chat_color FROM users WHERE username IN (?)`, usernames)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var username, color string
		if err := rows.Scan(&username, &color); err != nil {
			return nil, err
		}
		colors[username] = color
	}
	return colors, rows.Err()
}

// SetAdmin promotes or demotes a user.
func (r *UserRepo) SetAdmin(ctx context.Context, userID int, isAdmin bool) error {
	return r.execOne(ctx, `UPDATE users SET is_admin=$2 WHERE id=$1`, userID, isAdmin)
}

// CountUsers returns the number of registered users.
func (r *UserRepo) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// CountAdmins returns the number of admin users.
func (r *UserRepo) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE is_admin = TRUE`)
	return count, err
}

func (r *UserRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
