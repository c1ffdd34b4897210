package models

import "time"

// Message is a public chat-room message. Username and profile picture are
// denormalized snapshots taken at send time, not foreign keys.
type Message struct {
	ID         int       `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	Content    string    `db:"content" json:"content"`
	ProfilePic string    `db:"profile_pic" json:"profile_pic"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
