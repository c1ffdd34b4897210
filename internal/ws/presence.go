package ws

import (
	"sync"

	"pictochat-service/internal/models"
)

// Presence maps live connections to identity snapshots and derives the
// online-user set. It also keeps an identity-to-connection index pointing at
// the most recent connection of each identity; older connections of the same
// identity stay registered (multi-connection presence) and duplicates
// collapse only in the deduplicated listing.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]ConnInfo
	latest  map[int]string
}

// NewPresence creates an empty registry.
func NewPresence() *Presence {
	return &Presence{
		entries: make(map[string]ConnInfo),
		latest:  make(map[int]string),
	}
}

// Register inserts or overwrites the entry for a connection id and retargets
// the identity index to it. Idempotent.
func (p *Presence) Register(info ConnInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[info.ConnID] = info
	p.latest[info.UserID] = info.ConnID
}

// Unregister removes a connection's entry; no-op if absent. The identity
// index is cleared only when it still points at this connection, so a newer
// connection of the same identity keeps its mapping.
func (p *Presence) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.entries[connID]
	if !ok {
		return
	}
	delete(p.entries, connID)
	if p.latest[info.UserID] == connID {
		delete(p.latest, info.UserID)
	}
}

// Distinct returns the online users deduplicated by username. An identity
// connected more than once appears exactly once, with one of its valid
// snapshots.
func (p *Presence) Distinct() []models.OnlineUser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[string]bool, len(p.entries))
	users := make([]models.OnlineUser, 0, len(p.entries))
	for _, info := range p.entries {
		if seen[info.Username] {
			continue
		}
		seen[info.Username] = true
		users = append(users, models.OnlineUser{
			Username:   info.Username,
			ProfilePic: info.ProfilePic,
			Color:      info.Color,
		})
	}
	return users
}

// LatestConn returns the most recently registered connection id for an
// identity, if any of its connections are live.
func (p *Presence) LatestConn(userID int) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.latest[userID]
	return connID, ok
}

// Online reports whether the identity has at least one live connection.
func (p *Presence) Online(userID int) bool {
	_, ok := p.LatestConn(userID)
	return ok
}
