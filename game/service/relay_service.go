package service

import (
	"context"
	"encoding/json"

	"github.com/parchis-live/relay/game/room"
)

// RelayService defines all relay operations consumed by the transports.
type RelayService interface {
	// Room lifecycle
	CreateRoom(ctx context.Context, playerName, playerColor string) (*CreateRoomResult, error)
	JoinRoom(ctx context.Context, roomCode, playerName, playerColor string) (*JoinRoomResult, error)
	LeaveRoom(ctx context.Context, roomCode, playerID string) (*LeaveRoomResult, error)

	// Read side
	GetRoom(ctx context.Context, roomCode string) (*room.Data, error)
	ListPublicRooms(ctx context.Context) ([]room.Summary, error)
	RoomCount(ctx context.Context) int

	// Game state relay
	RecordDiceRoll(ctx context.Context, roomCode string, diceValue, currentPlayer int) error
	RecordGameMove(ctx context.Context, roomCode string, pieces json.RawMessage, currentPlayer int) error
}
