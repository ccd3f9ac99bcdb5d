package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parchis-live/relay/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Piece layouts are the largest
	// payload and stay well under this.
	maxMessageSize = 4096

	// Per-client outbound buffer. A client that falls this far behind starts
	// losing broadcasts rather than stalling the room.
	sendBufferSize = 256

	// Hub-level broadcast queue.
	eventQueueSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Game clients connect from app webviews and local files.
		return true
	},
}

// outboundEvent is a queued broadcast: a pre-marshaled payload destined for
// every bound player of a room except excludeID.
type outboundEvent struct {
	roomCode  string
	excludeID string
	payload   []byte
}

// Hub fans queued broadcasts out to room participants and tracks live
// connections through its Registry. Fan-out runs on the hub's own goroutine
// so no protocol handler ever blocks on delivery.
type Hub struct {
	service  service.RelayService
	registry *Registry
	events   chan *outboundEvent
}

// NewHub creates a new hub on top of the given service and registry.
func NewHub(svc service.RelayService, registry *Registry) *Hub {
	return &Hub{
		service:  svc,
		registry: registry,
		events:   make(chan *outboundEvent, eventQueueSize),
	}
}

// Run drains the broadcast queue until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

// ServeWS upgrades an HTTP request and starts the connection's pumps.
// The connection starts unbound; binding happens through the protocol.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection established")

	go client.writePump()
	go client.readPump()
}

// BroadcastToRoom queues msg for delivery to every bound player of the room,
// excluding excludeID when non-empty. Delivery is best effort.
func (h *Hub) BroadcastToRoom(roomCode string, msg any, excludeID string) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("room", roomCode).Msg("failed to marshal broadcast")
		return
	}

	ev := &outboundEvent{roomCode: roomCode, excludeID: excludeID, payload: payload}
	select {
	case h.events <- ev:
	default:
		log.Warn().Str("room", roomCode).Msg("broadcast queue full, dropping event")
	}
}

// ConnectionCount returns the number of bound player connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Count()
}

// fanOut resolves the room's current players and delivers the payload to
// each bound one. A player present in the room but missing from the registry
// is a leave/broadcast race and is skipped silently. A failed delivery to
// one recipient never affects the others.
func (h *Hub) fanOut(ev *outboundEvent) {
	data, err := h.service.GetRoom(context.Background(), ev.roomCode)
	if err != nil {
		// Room vanished between queueing and delivery.
		return
	}

	for _, p := range data.Players {
		if p.ID == ev.excludeID {
			continue
		}
		binding, ok := h.registry.Lookup(p.ID)
		if !ok {
			continue
		}
		binding.Client.trySend(ev.payload)
	}
}
