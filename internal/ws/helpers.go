package ws

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// newConnID mints the per-connection identifier used as the presence key.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
