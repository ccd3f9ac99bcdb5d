// Package websocket provides the WebSocket transport for the Parchis relay.
//
// The websocket package implements:
//   - Per-connection protocol handling (create/join/leave, dice rolls, moves)
//   - A connection registry binding player ids to live connections
//   - Best-effort room broadcasts with per-recipient isolation
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// Each client connection runs a read pump and a write pump. The read pump
// parses one JSON envelope per WebSocket frame and dispatches on its "type"
// field; all room mutations go through the injected RelayService. Broadcasts
// are queued on the Hub and fanned out by the Hub's run loop, so a slow
// recipient never stalls protocol handling: delivery to each recipient is a
// non-blocking send into that client's buffered channel.
//
// Connection Lifecycle:
//
// A connection starts unbound. create_room or join_room binds it to a player
// id and room code; leave_room or the transport closing unbinds it. Closing
// the transport runs exactly the same leave path as an explicit leave_room,
// so a crashed client frees its seat identically. Leaves are idempotent.
//
// Message Protocol:
//
// Inbound and outbound units are self-contained JSON envelopes with a "type"
// tag. Outbound room snapshots (roomData) are full replacements, not deltas.
package websocket
