// Package room holds the relay's data model and the in-memory room store.
//
// The store is the single owner of all Room state. Every mutation and every
// snapshot read goes through the store's mutex, so callers never observe a
// torn view of a room. Rooms hold a last-write-wins GameState blackboard;
// the server relays values and never validates game rules.
package room
