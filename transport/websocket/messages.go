package websocket

import (
	"encoding/json"

	"github.com/parchis-live/relay/game/room"
)

// Inbound message types.
const (
	typeCreateRoom     = "create_room"
	typeJoinRoom       = "join_room"
	typeLeaveRoom      = "leave_room"
	typeGetPublicRooms = "get_public_rooms"
	typeDiceRoll       = "dice_roll"
	typeGameMove       = "game_move"
)

// Outbound message types.
const (
	typeRoomCreated  = "room_created"
	typeRoomJoined   = "room_joined"
	typePlayerJoined = "player_joined"
	typePlayerLeft   = "player_left"
	typePublicRooms  = "public_rooms"
	typeDiceRolled   = "dice_rolled"
	typeError        = "error"
)

// clientMessage is the inbound envelope. Only the fields relevant to the
// given type are populated; Pieces stays opaque.
type clientMessage struct {
	Type          string          `json:"type"`
	RoomCode      string          `json:"roomCode,omitempty"`
	PlayerName    string          `json:"playerName,omitempty"`
	PlayerColor   string          `json:"playerColor,omitempty"`
	DiceValue     int             `json:"diceValue,omitempty"`
	CurrentPlayer int             `json:"currentPlayer,omitempty"`
	Pieces        json.RawMessage `json:"pieces,omitempty"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type roomCreatedMessage struct {
	Type       string      `json:"type"`
	RoomCode   string      `json:"roomCode"`
	PlayerID   string      `json:"playerId"`
	PlayerData room.Player `json:"playerData"`
}

type roomJoinedMessage struct {
	Type       string      `json:"type"`
	RoomCode   string      `json:"roomCode"`
	PlayerID   string      `json:"playerId"`
	PlayerData room.Player `json:"playerData"`
	RoomData   room.Data   `json:"roomData"`
}

type playerJoinedMessage struct {
	Type       string      `json:"type"`
	PlayerData room.Player `json:"playerData"`
	RoomData   room.Data   `json:"roomData"`
}

type playerLeftMessage struct {
	Type     string    `json:"type"`
	PlayerID string    `json:"playerId"`
	RoomData room.Data `json:"roomData"`
}

type publicRoomsMessage struct {
	Type  string         `json:"type"`
	Rooms []room.Summary `json:"rooms"`
}

type diceRolledMessage struct {
	Type          string `json:"type"`
	DiceValue     int    `json:"diceValue"`
	CurrentPlayer int    `json:"currentPlayer"`
	PlayerID      string `json:"playerId"`
}

type gameMoveMessage struct {
	Type          string          `json:"type"`
	Pieces        json.RawMessage `json:"pieces"`
	CurrentPlayer int             `json:"currentPlayer"`
	PlayerID      string          `json:"playerId"`
}
