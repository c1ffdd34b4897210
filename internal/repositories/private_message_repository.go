package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pictochat-service/internal/models"
)

const pmColumns = `id, sender_id, recipient_id, content, is_read, created_at`

// PrivateMessageRepository handles direct messages and their read state.
type PrivateMessageRepository interface {
	CreatePrivateMessage(ctx context.Context, senderID, recipientID int, content string) (models.PrivateMessage, error)
	ListConversation(ctx context.Context, userID, otherID int) ([]models.PrivateMessage, error)
	MarkConversationRead(ctx context.Context, viewerID, otherID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
	ListConversations(ctx context.Context, userID int) ([]models.Conversation, error)
}

// PrivateMessageRepo is a sqlx-backed repository.
type PrivateMessageRepo struct {
	db *sqlx.DB
}

// NewPrivateMessageRepo constructs PrivateMessageRepo.
func NewPrivateMessageRepo(db *sqlx.DB) *PrivateMessageRepo {
	return &PrivateMessageRepo{db: db}
}

// CreatePrivateMessage stores a direct message as unread.
func (r *PrivateMessageRepo) CreatePrivateMessage(ctx context.Context, senderID, recipientID int, content string) (models.PrivateMessage, error) {
	var msg models.PrivateMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO private_messages (sender_id, recipient_id, content) VALUES ($1, $2, $3)
         RETURNING `+pmColumns, senderID, recipientID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.IsRead, &msg.CreatedAt)
	return msg, err
}

// ListConversation returns the full thread between two users, oldest first.
func (r *PrivateMessageRepo) ListConversation(ctx context.Context, userID, otherID int) ([]models.PrivateMessage, error) {
	var msgs []models.PrivateMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+pmColumns+` FROM private_messages
         WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
         ORDER BY created_at ASC, id ASC`, userID, otherID)
	return msgs, err
}

// MarkConversationRead flips every unread message from otherID to the viewer
// in one batch. Idempotent.
func (r *PrivateMessageRepo) MarkConversationRead(ctx context.Context, viewerID, otherID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE private_messages SET is_read = TRUE
         WHERE sender_id=$2 AND recipient_id=$1 AND is_read = FALSE`, viewerID, otherID)
	return err
}

// UnreadCount counts unread messages addressed to the user.
func (r *PrivateMessageRepo) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM private_messages WHERE recipient_id=$1 AND is_read = FALSE`, userID)
	return count, err
}

// ListConversations groups the user's direct messages by the other
// participant, keeping only the latest message per thread, newest first.
func (r *PrivateMessageRepo) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	query := `SELECT u.id, u.username, u.profile_pic,
            t.id, t.sender_id, t.recipient_id, t.content, t.is_read, t.created_at,
            (SELECT COUNT(*) FROM private_messages unread
             WHERE unread.sender_id = u.id AND unread.recipient_id = $1 AND unread.is_read = FALSE) AS unread_count
        FROM (
            SELECT DISTINCT ON (other_id) *
            FROM (
                SELECT pm.*, CASE WHEN pm.sender_id = $1 THEN pm.recipient_id ELSE pm.sender_id END AS other_id
                FROM private_messages pm
                WHERE pm.sender_id = $1 OR pm.recipient_id = $1
            ) flattened
            ORDER BY other_id, id DESC
        ) t
        JOIN users u ON u.id = t.other_id
        ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.UserID, &conv.Username, &conv.ProfilePic,
			&conv.LastMessage.ID, &conv.LastMessage.SenderID, &conv.LastMessage.RecipientID,
			&conv.LastMessage.Content, &conv.LastMessage.IsRead, &conv.LastMessage.CreatedAt,
			&conv.UnreadCount,
		); err != nil {
			return nil, err
		}
		result = append(result, conv)
	}
	return result, rows.Err()
}
