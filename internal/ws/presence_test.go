package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresenceRegisterAndUnregister(t *testing.T) {
	presence := NewPresence()

	presence.Register(ConnInfo{ConnID: "c1", UserID: 1, Username: "alice"})
	require.True(t, presence.Online(1))

	presence.Unregister("c1")
	require.False(t, presence.Online(1))
	require.Empty(t, presence.Distinct())
}

func TestPresenceUnregisterUnknownConn(t *testing.T) {
	presence := NewPresence()
	presence.Unregister("missing")
	require.Empty(t, presence.Distinct())
}

func TestPresenceDistinctDedupesByUsername(t *testing.T) {
	presence := NewPresence()

	presence.Register(ConnInfo{ConnID: "c1", UserID: 1, Username: "alice", Color: "#61829a"})
	presence.Register(ConnInfo{ConnID: "c2", UserID: 1, Username: "alice", Color: "#61829a"})
	presence.Register(ConnInfo{ConnID: "c3", UserID: 2, Username: "bob"})

	users := presence.Distinct()
	require.Len(t, users, 2)

	names := map[string]bool{}
	for _, u := range users {
		names[u.Username] = true
	}
	require.True(t, names["alice"])
	require.True(t, names["bob"])
}

func TestPresenceLatestConnSurvivesOldTeardown(t *testing.T) {
	presence := NewPresence()

	presence.Register(ConnInfo{ConnID: "old", UserID: 1, Username: "alice"})
	presence.Register(ConnInfo{ConnID: "new", UserID: 1, Username: "alice"})

	connID, ok := presence.LatestConn(1)
	require.True(t, ok)
	require.Equal(t, "new", connID)

	// tearing down the older connection must not clear the newer mapping
	presence.Unregister("old")
	connID, ok = presence.LatestConn(1)
	require.True(t, ok)
	require.Equal(t, "new", connID)
	require.True(t, presence.Online(1))

	presence.Unregister("new")
	require.False(t, presence.Online(1))
}
