package models

import "encoding/json"

// Websocket event names. Inbound events arrive from clients, outbound events
// are pushed by the server.
const (
	EventTyping         = "typing"
	EventMessage        = "message"
	EventPrivateMessage = "private_message"

	EventStatus         = "status"
	EventOnlineUsers    = "online_users"
	EventUserTyping     = "user_typing"
	EventKicked         = "kicked"
	EventPMSent         = "pm_sent"
	EventPMReceived     = "pm_received"
	EventPMError        = "pm_error"
	EventPMNotification = "pm_notification"
)

// Envelope frames every websocket event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into a framed event. Marshal errors are
// impossible for the payload types used here, so they map to an empty frame.
func NewEnvelope(event string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	out, _ := json.Marshal(Envelope{Event: event, Data: data})
	return out
}

// TypingPayload is the inbound typing-indicator event.
type TypingPayload struct {
	Typing bool `json:"typing"`
}

// MessagePayload is the inbound public-chat message event.
type MessagePayload struct {
	Msg string `json:"msg"`
}

// PrivateMessagePayload is the inbound direct-message event.
type PrivateMessagePayload struct {
	RecipientID int    `json:"recipient_id"`
	Msg         string `json:"msg"`
}

// StatusPayload carries status lines and rate-limit / save-error notices.
type StatusPayload struct {
	Msg string `json:"msg"`
}

// OnlineUser is one entry of the deduplicated presence snapshot.
type OnlineUser struct {
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Color      string `json:"color"`
}

// OnlineUsersPayload is the full presence snapshot pushed on every change.
type OnlineUsersPayload struct {
	Users []OnlineUser `json:"users"`
}

// UserTypingPayload is rebroadcast to everyone except the typist.
type UserTypingPayload struct {
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
}

// ChatMessagePayload is the outbound public message broadcast.
type ChatMessagePayload struct {
	Username   string `json:"username"`
	Msg        string `json:"msg"`
	Time       string `json:"time"`
	ProfilePic string `json:"profile_pic"`
	Color      string `json:"color"`
}

// PMPayload confirms a sent direct message to the origin and delivers it to
// the recipient's connections.
type PMPayload struct {
	ID          int    `json:"id"`
	SenderID    int    `json:"sender_id"`
	RecipientID int    `json:"recipient_id"`
	Msg         string `json:"msg"`
	Time        string `json:"time"`
}

// PMErrorPayload is the structured refusal for blocked, self, rate-limited
// or failed direct messages.
type PMErrorPayload struct {
	Msg string `json:"msg"`
}

// PMNotificationPayload pings the recipient that someone wrote to them.
type PMNotificationPayload struct {
	Sender string `json:"sender"`
}
