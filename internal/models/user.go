package models

import "time"

// DefaultChatColor is applied when a user has not picked a palette color.
const DefaultChatColor = "#61829a"

// ChatColors is the fixed palette users may pick their message color from.
var ChatColors = []string{
	"#61829a", "#ba4900", "#fb0018", "#fb8afb",
	"#fb9200", "#f3e300", "#aafb00", "#00fb00",
	"#00a238", "#49db8a", "#30baf3", "#0059f3",
	"#000092", "#8a00d3", "#d300eb", "#fb0092",
}

// User is a registered identity. SessionToken holds the single currently
// valid session secret; rotating it invalidates every older login.
type User struct {
	ID                 int        `db:"id" json:"id"`
	Username           string     `db:"username" json:"username"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	ProfilePic         string     `db:"profile_pic" json:"profile_pic"`
	ChatColor          string     `db:"chat_color" json:"chat_color"`
	RegisteredOn       time.Time  `db:"registered_on" json:"registered_on"`
	LastUsernameChange *time.Time `db:"last_username_change" json:"-"`
	MessageCount       int        `db:"message_count" json:"message_count"`
	SessionToken       *string    `db:"session_token" json:"-"`
	IsAdmin            bool       `db:"is_admin" json:"is_admin"`
}

// Color returns the user's chat color, falling back to the default.
func (u User) Color() string {
	if u.ChatColor == "" {
		return DefaultChatColor
	}
	return u.ChatColor
}

// CanChangeUsername reports whether the 30-day rename cooldown has passed.
func (u User) CanChangeUsername(now time.Time) bool {
	if u.LastUsernameChange == nil {
		return true
	}
	return now.Sub(*u.LastUsernameChange) >= 30*24*time.Hour
}
