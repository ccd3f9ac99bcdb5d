package service

import (
	"github.com/parchis-live/relay/game/room"
)

// Default colors assigned when a client does not pick one, matching what
// game clients expect: the host gets red, joiners get blue.
const (
	DefaultHostColor  = "red"
	DefaultGuestColor = "blue"
)

// CreateRoomResult is returned after a room is created with the caller as host.
type CreateRoomResult struct {
	RoomCode string
	Player   room.Player
	Room     room.Data
}

// JoinRoomResult is returned after a successful join. Room is the full
// post-join snapshot; broadcasts to the rest of the room use the same snapshot.
type JoinRoomResult struct {
	RoomCode string
	Player   room.Player
	Room     room.Data
}

// LeaveRoomResult reports the outcome of a leave. Leaves are idempotent:
// Removed is false when the player was already gone.
type LeaveRoomResult struct {
	RoomCode   string
	PlayerID   string
	Removed    bool
	RoomClosed bool
	RoomExists bool
	Room       room.Data
}
