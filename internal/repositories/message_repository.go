package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"pictochat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository handles public chat-room messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, username, content, profilePic string) (models.Message, error)
	ListRecent(ctx context.Context, limit int) ([]models.Message, error)
	DeleteMessage(ctx context.Context, messageID int) error
	CountMessages(ctx context.Context) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a public message with its denormalized snapshot.
func (r *MessageRepo) CreateMessage(ctx context.Context, username, content, profilePic string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (username, content, profile_pic) VALUES ($1, $2, $3)
         RETURNING id, username, content, profile_pic, created_at`,
		username, content, profilePic).
		Scan(&msg.ID, &msg.Username, &msg.Content, &msg.ProfilePic, &msg.CreatedAt)
	return msg, err
}

// ListRecent returns the newest messages in ascending time order.
func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, username, content, profile_pic, created_at FROM (
            SELECT id, username, content, profile_pic, created_at
            FROM messages ORDER BY created_at DESC, id DESC LIMIT $1
         ) recent ORDER BY created_at ASC, id ASC`, limit)
	return msgs, err
}

// DeleteMessage removes a message. Only the admin surface calls this.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CountMessages returns the total number of stored public messages.
func (r *MessageRepo) CountMessages(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`)
	return count, err
}
