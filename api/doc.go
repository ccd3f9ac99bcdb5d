// Package api exposes the relay's HTTP surface.
//
// It serves three things on one gorilla/mux router:
//
//   - Health and stats at GET /health (and GET /), reporting live room and
//     player counts for load balancers and uptime monitors.
//   - A small read-only REST API under /api for lobby browsers that poll
//     instead of holding a WebSocket open: room listings and room lookups.
//   - The WebSocket endpoint at /ws, delegated to the websocket transport.
//
// The room listing is the only endpoint expected to be polled by many
// clients at once, so it is served through a short-lived cache backed by
// go-cache with singleflight collapsing concurrent misses into one store
// read. Everything else reads the store directly.
package api
