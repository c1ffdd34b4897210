package ws

import "testing"

func newTestClient() *Client {
	return &Client{
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func TestHubJoinAndLeave(t *testing.T) {
	hub := NewHub()
	client := newTestClient()

	hub.Join(client, RoomMain)
	if hub.RoomSize(RoomMain) != 1 {
		t.Fatalf("expected room to have one member")
	}

	hub.Leave(client, RoomMain)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected empty room to be deleted")
	}
}

func TestHubLeaveAll(t *testing.T) {
	hub := NewHub()
	client := newTestClient()

	hub.Join(client, RoomMain)
	hub.Join(client, UserRoom(7))

	hub.LeaveAll(client)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected all rooms to be deleted, got %d", len(hub.rooms))
	}
}

func TestHubBroadcastExcludesOrigin(t *testing.T) {
	hub := NewHub()
	origin := newTestClient()
	other := newTestClient()

	hub.Join(origin, RoomMain)
	hub.Join(other, RoomMain)

	hub.Broadcast(RoomMain, []byte("hello"), origin)

	select {
	case msg := <-other.send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected payload: %s", msg)
		}
	default:
		t.Fatalf("expected other client to receive the broadcast")
	}

	select {
	case <-origin.send:
		t.Fatalf("origin should not receive its own broadcast")
	default:
	}
}

func TestHubBroadcastEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	stalled := newTestClient()
	hub.Join(stalled, RoomMain)

	for i := 0; i < sendBuffer; i++ {
		if !stalled.enqueue([]byte("fill")) {
			t.Fatalf("queue filled early at %d", i)
		}
	}

	hub.Broadcast(RoomMain, []byte("overflow"), nil)

	if hub.RoomSize(RoomMain) != 0 {
		t.Fatalf("expected stalled client to be evicted")
	}
	select {
	case <-stalled.done:
	default:
		t.Fatalf("expected stalled client to be closed")
	}
}
