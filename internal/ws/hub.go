package ws

import (
	"fmt"
	"sync"
)

// RoomMain is the single public broadcast room every connection joins.
const RoomMain = "main"

// UserRoom names the personal room for one identity. Every connection of
// that identity joins it, so direct-message pushes reach all of them.
func UserRoom(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

// Hub maintains named rooms of websocket clients and fans events out to
// them. Delivery goes through each client's bounded outbound queue; a client
// that cannot keep up is dropped rather than allowed to stall the room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Join adds a client to a room, creating the room on first use.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

// Leave removes a client from a room; empty rooms are deleted.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, room)
}

// LeaveAll removes a client from every room it joined. Called on disconnect.
func (h *Hub) LeaveAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.rooms {
		h.leaveLocked(client, room)
	}
}

func (h *Hub) leaveLocked(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize reports how many clients are joined to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast sends payload to every member of a room, optionally excluding
// the originating client. Members whose outbound queue is full are closed
// and evicted so one slow reader cannot block delivery to the rest.
func (h *Hub) Broadcast(room string, payload []byte, exclude *Client) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		if client != exclude {
			members = append(members, client)
		}
	}
	h.mu.RUnlock()

	var stalled []*Client
	for _, client := range members {
		if !client.enqueue(payload) {
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		h.LeaveAll(client)
		client.Close()
	}
}
