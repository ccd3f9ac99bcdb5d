package room

import (
	"encoding/json"
	"sort"
	"time"
)

// MaxPlayers is the seat capacity of every room.
const MaxPlayers = 4

// Status describes a room's lifecycle phase. Progression is monotonic:
// waiting -> playing -> finished, never back to waiting.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Player is a participant in a room. Exactly one player per room has
// IsHost set; it is assigned at room creation and never moves.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsHost   bool   `json:"isHost"`
	JoinedAt int64  `json:"joinedAt"`
}

// GameState is the shared blackboard clients overwrite through relayed
// messages. Pieces is an opaque payload owned by the client application.
type GameState struct {
	CurrentPlayer int             `json:"currentPlayer"`
	DiceValue     int             `json:"diceValue"`
	Pieces        json.RawMessage `json:"pieces"`
	GameStarted   bool            `json:"gameStarted"`
	GameEnded     bool            `json:"gameEnded"`
}

// Room is a live session. It is owned exclusively by the Store; all access
// outside this package happens through Store methods and snapshots.
type Room struct {
	Code      string
	Players   map[string]*Player
	State     GameState
	CreatedAt time.Time
	Status    Status
}

// Data is the full-replacement room snapshot sent to clients.
type Data struct {
	Players   []Player  `json:"players"`
	GameState GameState `json:"gameState"`
}

// Summary is the read-only listing entry for a waiting room.
type Summary struct {
	RoomCode    string `json:"roomCode"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Status      Status `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

// newRoom builds a waiting room containing only the host. Caller (the Store)
// holds the lock.
func newRoom(code string, host Player) *Room {
	return &Room{
		Code:    code,
		Players: map[string]*Player{host.ID: &host},
		State: GameState{
			Pieces: json.RawMessage("[]"),
		},
		CreatedAt: time.Now(),
		Status:    StatusWaiting,
	}
}

// data copies the room into a snapshot. Players are ordered by join time so
// clients see a stable seating order. Caller holds the store lock.
func (r *Room) data() Data {
	players := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt != players[j].JoinedAt {
			return players[i].JoinedAt < players[j].JoinedAt
		}
		return players[i].ID < players[j].ID
	})
	return Data{Players: players, GameState: r.State}
}

// summary builds the public listing entry. Caller holds the store lock.
func (r *Room) summary() Summary {
	hostName := "unknown host"
	for _, p := range r.Players {
		if p.IsHost {
			hostName = p.Name
			break
		}
	}
	return Summary{
		RoomCode:    r.Code,
		HostName:    hostName,
		PlayerCount: len(r.Players),
		MaxPlayers:  MaxPlayers,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.UnixMilli(),
	}
}
