package ids

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// RoomCodeLength is the number of characters in a generated room code.
const RoomCodeLength = 6

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRoomCode returns a 6-character code drawn uniformly from [A-Z0-9].
// Codes are not unique by themselves; the caller must check the room store
// and retry on collision.
func NewRoomCode() string {
	buf := make([]byte, RoomCodeLength)
	for i := range buf {
		buf[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}
	return string(buf)
}

// NewPlayerID returns an identifier of the form player_<unixms>_<suffix>.
// The uuid suffix makes collisions within a process practically impossible;
// ids are not security credentials.
func NewPlayerID() string {
	return fmt.Sprintf("player_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
