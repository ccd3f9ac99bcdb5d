package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parchis-live/relay/game/ids"
	"github.com/parchis-live/relay/game/room"
)

// maxCodeAttempts bounds code regeneration on collision. With 36^6 codes a
// second attempt is already rare; hitting the bound means the RNG is broken.
const maxCodeAttempts = 10

// relayServiceImpl implements the RelayService interface on top of a
// room.Store. It is stateless itself; the store serializes all mutations.
type relayServiceImpl struct {
	rooms *room.Store
}

// NewRelayService creates a new relay service instance.
func NewRelayService(rooms *room.Store) RelayService {
	return &relayServiceImpl{
		rooms: rooms,
	}
}

// CreateRoom creates a waiting room with the caller as host. Code collisions
// are resolved internally by regenerating; they never surface to the client.
func (s *relayServiceImpl) CreateRoom(ctx context.Context, playerName, playerColor string) (*CreateRoomResult, error) {
	if playerColor == "" {
		playerColor = DefaultHostColor
	}

	host := room.Player{
		ID:       ids.NewPlayerID(),
		Name:     playerName,
		Color:    playerColor,
		IsHost:   true,
		JoinedAt: time.Now().UnixMilli(),
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := ids.NewRoomCode()
		data, err := s.rooms.Create(code, host)
		if errors.Is(err, room.ErrRoomExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info().
			Str("room", code).
			Str("player", host.ID).
			Str("name", host.Name).
			Msg("room created")

		return &CreateRoomResult{
			RoomCode: code,
			Player:   host,
			Room:     data,
		}, nil
	}

	return nil, fmt.Errorf("failed to create room: %w", room.ErrRoomExists)
}

// JoinRoom seats a new player in an existing room. It fails with
// room.ErrRoomNotFound or room.ErrRoomFull without mutating anything.
func (s *relayServiceImpl) JoinRoom(ctx context.Context, roomCode, playerName, playerColor string) (*JoinRoomResult, error) {
	if playerColor == "" {
		playerColor = DefaultGuestColor
	}

	player := room.Player{
		ID:       ids.NewPlayerID(),
		Name:     playerName,
		Color:    playerColor,
		IsHost:   false,
		JoinedAt: time.Now().UnixMilli(),
	}

	data, err := s.rooms.AddPlayer(roomCode, player)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("room", roomCode).
		Str("player", player.ID).
		Str("name", player.Name).
		Int("players", len(data.Players)).
		Msg("player joined")

	return &JoinRoomResult{
		RoomCode: roomCode,
		Player:   player,
		Room:     data,
	}, nil
}

// LeaveRoom removes the player and deletes the room when it empties.
// It is idempotent; a leave for an absent room or player reports Removed
// false and is not an error.
func (s *relayServiceImpl) LeaveRoom(ctx context.Context, roomCode, playerID string) (*LeaveRoomResult, error) {
	res := s.rooms.RemovePlayer(roomCode, playerID)

	if res.Removed {
		log.Info().
			Str("room", roomCode).
			Str("player", playerID).
			Bool("roomClosed", res.RoomClosed).
			Msg("player left")
	}
	if res.RoomClosed {
		log.Info().Str("room", roomCode).Msg("room removed (empty)")
	}

	return &LeaveRoomResult{
		RoomCode:   roomCode,
		PlayerID:   playerID,
		Removed:    res.Removed,
		RoomClosed: res.RoomClosed,
		RoomExists: res.RoomExists,
		Room:       res.Data,
	}, nil
}

// GetRoom returns the current room snapshot.
func (s *relayServiceImpl) GetRoom(ctx context.Context, roomCode string) (*room.Data, error) {
	data, ok := s.rooms.Get(roomCode)
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	return &data, nil
}

// ListPublicRooms returns summaries of joinable waiting rooms.
func (s *relayServiceImpl) ListPublicRooms(ctx context.Context) ([]room.Summary, error) {
	return s.rooms.ListWaiting(), nil
}

// RoomCount returns the number of active rooms.
func (s *relayServiceImpl) RoomCount(ctx context.Context) int {
	return s.rooms.Count()
}

// RecordDiceRoll overwrites the room's dice value and current-player index.
// The value is relayed as reported; no rule checks.
func (s *relayServiceImpl) RecordDiceRoll(ctx context.Context, roomCode string, diceValue, currentPlayer int) error {
	return s.rooms.SetDiceRoll(roomCode, diceValue, currentPlayer)
}

// RecordGameMove overwrites the room's piece payload and current-player index.
func (s *relayServiceImpl) RecordGameMove(ctx context.Context, roomCode string, pieces json.RawMessage, currentPlayer int) error {
	return s.rooms.SetPieces(roomCode, pieces, currentPlayer)
}
