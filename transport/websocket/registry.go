package websocket

import (
	"sync"

	"github.com/parchis-live/relay/game/room"
)

// Binding ties a player id to its live connection, room code and the
// participant snapshot taken at bind time. A binding never outlives the
// connection: it is removed synchronously on leave or close.
type Binding struct {
	Client   *Client
	RoomCode string
	Player   room.Player
}

// Registry owns the player id -> Binding mapping. Safe for concurrent use.
type Registry struct {
	bindings map[string]*Binding
	mu       sync.RWMutex
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]*Binding),
	}
}

// Bind registers or replaces the binding for playerID. A duplicate bind for
// a live id is a logic error upstream, but the last writer simply wins.
func (r *Registry) Bind(playerID string, b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[playerID] = b
}

// Unbind removes the binding for playerID. Idempotent.
func (r *Registry) Unbind(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, playerID)
}

// Lookup returns the binding for playerID, or ok=false when absent.
func (r *Registry) Lookup(playerID string) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[playerID]
	return b, ok
}

// Count returns the number of bound connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
