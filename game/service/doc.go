// Package service provides the orchestration layer for the Parchis relay.
//
// The service package implements:
//   - Room creation with collision-safe code generation
//   - Join/leave semantics with capacity enforcement
//   - Last-write-wins game state updates (dice rolls, piece moves)
//   - Public waiting-room listings
//
// Core Interfaces:
//
// RelayService is the main interface consumed by the WebSocket protocol
// handler, the REST API, and the MCP tools. All mutations flow through the
// injected room.Store, which serializes them; the service never holds locks
// of its own and never blocks on network I/O.
//
// The service validates nothing about game rules. Dice values and piece
// payloads are relayed and stored as-is; rule enforcement lives entirely in
// the client application.
//
// Usage:
//
//	store := room.NewStore()
//	relay := service.NewRelayService(store)
//
//	result, err := relay.CreateRoom(ctx, "alice", "red")
//	if err != nil {
//		log.Fatal(err)
//	}
package service
