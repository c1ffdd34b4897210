package models

import "time"

// PrivateMessage is a point-to-point message between two users. IsRead flips
// to true once the recipient opens the conversation; rows are never deleted.
type PrivateMessage struct {
	ID          int       `db:"id" json:"id"`
	SenderID    int       `db:"sender_id" json:"sender_id"`
	RecipientID int       `db:"recipient_id" json:"recipient_id"`
	Content     string    `db:"content" json:"content"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Conversation summarizes a private thread with one other user: the latest
// message exchanged plus how many of their messages are still unread.
type Conversation struct {
	UserID      int            `json:"user_id"`
	Username    string         `json:"username"`
	ProfilePic  string         `json:"profile_pic"`
	LastMessage PrivateMessage `json:"last_message"`
	UnreadCount int            `json:"unread_count"`
}
