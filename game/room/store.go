package room

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomFull     = errors.New("room is full")
)

// Store owns the code -> Room mapping. It is safe for concurrent use;
// operations on the same room are serialized by the store mutex.
type Store struct {
	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewStore creates an empty room store.
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// Create inserts a new waiting room under code with host as its only player.
// It fails with ErrRoomExists when the code is taken; the caller regenerates
// the code and retries, an existing room is never overwritten.
func (s *Store) Create(code string, host Player) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[code]; exists {
		return Data{}, ErrRoomExists
	}

	r := newRoom(code, host)
	s.rooms[code] = r
	return r.data(), nil
}

// Get returns a snapshot of the room, or ok=false when absent.
func (s *Store) Get(code string) (Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.rooms[code]
	if !exists {
		return Data{}, false
	}
	return r.data(), true
}

// AddPlayer seats p in the room. It fails with ErrRoomNotFound or ErrRoomFull
// without mutating anything; on success it returns the post-join snapshot.
func (s *Store) AddPlayer(code string, p Player) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[code]
	if !exists {
		return Data{}, ErrRoomNotFound
	}
	if len(r.Players) >= MaxPlayers {
		return Data{}, ErrRoomFull
	}

	r.Players[p.ID] = &p
	return r.data(), nil
}

// LeaveResult reports what RemovePlayer did.
type LeaveResult struct {
	// Removed is true when the player was present and got removed.
	Removed bool
	// RoomClosed is true when the removal emptied the room and it was deleted.
	RoomClosed bool
	// RoomExists is true when the room still exists after the call;
	// Data holds its snapshot in that case.
	RoomExists bool
	Data       Data
}

// RemovePlayer removes playerID from the room. It is a no-op when the room or
// player is absent, so disconnect races are harmless. Removing the last
// player deletes the room in the same critical section, so a Get after this
// call never sees an empty-but-present room.
func (s *Store) RemovePlayer(code, playerID string) LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[code]
	if !exists {
		return LeaveResult{}
	}

	if _, present := r.Players[playerID]; !present {
		return LeaveResult{RoomExists: true, Data: r.data()}
	}

	delete(r.Players, playerID)
	if len(r.Players) == 0 {
		delete(s.rooms, code)
		return LeaveResult{Removed: true, RoomClosed: true}
	}
	return LeaveResult{Removed: true, RoomExists: true, Data: r.data()}
}

// Delete removes the room regardless of occupants. It reports whether the
// room existed.
func (s *Store) Delete(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[code]; !exists {
		return false
	}
	delete(s.rooms, code)
	return true
}

// SetDiceRoll overwrites the room's dice value and current-player index.
func (s *Store) SetDiceRoll(code string, diceValue, currentPlayer int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[code]
	if !exists {
		return ErrRoomNotFound
	}
	r.State.DiceValue = diceValue
	r.State.CurrentPlayer = currentPlayer
	return nil
}

// SetPieces overwrites the room's piece payload and current-player index.
// The payload is opaque; last write wins.
func (s *Store) SetPieces(code string, pieces json.RawMessage, currentPlayer int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[code]
	if !exists {
		return ErrRoomNotFound
	}
	r.State.Pieces = pieces
	r.State.CurrentPlayer = currentPlayer
	return nil
}

// ListWaiting returns summaries of rooms that are waiting for players and
// have a free seat. The slice is a snapshot taken under the store lock.
func (s *Store) ListWaiting() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Summary, 0)
	for _, r := range s.rooms {
		if r.Status == StatusWaiting && len(r.Players) < MaxPlayers {
			result = append(result, r.summary())
		}
	}
	return result
}

// Count returns the number of active rooms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// CleanupExpiredRooms removes rooms that are both empty and older than
// maxAge, returning how many were removed. Rooms with players are never
// swept regardless of age; this is a backstop for empties the immediate
// cleanup path missed.
func (s *Store) CleanupExpiredRooms(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for code, r := range s.rooms {
		if len(r.Players) == 0 && r.CreatedAt.Before(cutoff) {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed
}
