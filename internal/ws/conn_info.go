package ws

import "time"

// ConnInfo snapshots identity display attributes at connect time. The
// snapshot is what presence and broadcasts show for the life of the
// connection, even if the profile changes afterwards.
type ConnInfo struct {
	ConnID      string
	UserID      int
	Username    string
	ProfilePic  string
	Color       string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
