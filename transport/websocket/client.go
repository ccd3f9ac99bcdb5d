package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parchis-live/relay/game/room"
)

// Client is one WebSocket connection and its per-connection protocol state.
// playerID and roomCode are empty while unbound; they are only touched from
// the read pump goroutine.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	playerID string
	roomCode string
}

// readPump pumps messages from the WebSocket connection into the protocol
// handler. On exit it runs the leave path, so an abrupt disconnect frees the
// seat exactly like an explicit leave_room.
func (c *Client) readPump() {
	defer func() {
		c.leaveRoom()
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			break
		}
		c.handleMessage(data)
	}
}

// writePump pumps queued payloads to the WebSocket connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage parses one inbound envelope and dispatches on its type.
// A handler failure only ever answers this connection; it never interrupts
// the connection itself or any other room.
func (c *Client) handleMessage(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Err(err).Msg("malformed message")
		c.sendError("could not process message")
		return
	}

	switch msg.Type {
	case typeCreateRoom:
		c.handleCreateRoom(msg)
	case typeJoinRoom:
		c.handleJoinRoom(msg)
	case typeLeaveRoom:
		c.leaveRoom()
	case typeGetPublicRooms:
		c.handleGetPublicRooms()
	case typeDiceRoll:
		c.handleDiceRoll(msg)
	case typeGameMove:
		c.handleGameMove(msg)
	default:
		log.Debug().Str("type", msg.Type).Msg("unrecognized message type")
	}
}

func (c *Client) handleCreateRoom(msg clientMessage) {
	if c.playerID != "" {
		c.sendError("already in a room")
		return
	}

	result, err := c.hub.service.CreateRoom(context.Background(), msg.PlayerName, msg.PlayerColor)
	if err != nil {
		c.sendError("could not create room")
		return
	}

	c.playerID = result.Player.ID
	c.roomCode = result.RoomCode
	c.hub.registry.Bind(result.Player.ID, &Binding{
		Client:   c,
		RoomCode: result.RoomCode,
		Player:   result.Player,
	})

	c.sendMessage(roomCreatedMessage{
		Type:       typeRoomCreated,
		RoomCode:   result.RoomCode,
		PlayerID:   result.Player.ID,
		PlayerData: result.Player,
	})
}

func (c *Client) handleJoinRoom(msg clientMessage) {
	if c.playerID != "" {
		c.sendError("already in a room")
		return
	}

	result, err := c.hub.service.JoinRoom(context.Background(), msg.RoomCode, msg.PlayerName, msg.PlayerColor)
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		c.sendError("room not found")
		return
	case errors.Is(err, room.ErrRoomFull):
		c.sendError("room is full")
		return
	case err != nil:
		c.sendError("could not join room")
		return
	}

	c.playerID = result.Player.ID
	c.roomCode = result.RoomCode
	c.hub.registry.Bind(result.Player.ID, &Binding{
		Client:   c,
		RoomCode: result.RoomCode,
		Player:   result.Player,
	})

	c.sendMessage(roomJoinedMessage{
		Type:       typeRoomJoined,
		RoomCode:   result.RoomCode,
		PlayerID:   result.Player.ID,
		PlayerData: result.Player,
		RoomData:   result.Room,
	})

	c.hub.BroadcastToRoom(result.RoomCode, playerJoinedMessage{
		Type:       typePlayerJoined,
		PlayerData: result.Player,
		RoomData:   result.Room,
	}, result.Player.ID)
}

// leaveRoom runs the shared leave path for explicit leave_room messages and
// transport close. It is idempotent: the second invocation finds the
// connection unbound and does nothing, so a leave followed by a disconnect
// produces exactly one player_left broadcast.
func (c *Client) leaveRoom() {
	if c.playerID == "" {
		return
	}

	playerID, roomCode := c.playerID, c.roomCode
	c.playerID, c.roomCode = "", ""

	// Unbind before the store mutation so the departing connection can never
	// receive its own player_left.
	c.hub.registry.Unbind(playerID)

	result, err := c.hub.service.LeaveRoom(context.Background(), roomCode, playerID)
	if err != nil {
		log.Error().Err(err).Str("room", roomCode).Str("player", playerID).Msg("leave failed")
		return
	}

	if result.Removed && result.RoomExists {
		c.hub.BroadcastToRoom(roomCode, playerLeftMessage{
			Type:     typePlayerLeft,
			PlayerID: playerID,
			RoomData: result.Room,
		}, "")
	}
}

func (c *Client) handleGetPublicRooms() {
	rooms, err := c.hub.service.ListPublicRooms(context.Background())
	if err != nil {
		c.sendError("could not list rooms")
		return
	}
	c.sendMessage(publicRoomsMessage{
		Type:  typePublicRooms,
		Rooms: rooms,
	})
}

func (c *Client) handleDiceRoll(msg clientMessage) {
	if c.roomCode == "" {
		return
	}

	if err := c.hub.service.RecordDiceRoll(context.Background(), c.roomCode, msg.DiceValue, msg.CurrentPlayer); err != nil {
		// Room vanished under us; the pending leave will clean up.
		return
	}

	// Echoed to the sender too, so every client applies updates in the same
	// order.
	c.hub.BroadcastToRoom(c.roomCode, diceRolledMessage{
		Type:          typeDiceRolled,
		DiceValue:     msg.DiceValue,
		CurrentPlayer: msg.CurrentPlayer,
		PlayerID:      c.playerID,
	}, "")
}

func (c *Client) handleGameMove(msg clientMessage) {
	if c.roomCode == "" {
		return
	}

	if err := c.hub.service.RecordGameMove(context.Background(), c.roomCode, msg.Pieces, msg.CurrentPlayer); err != nil {
		return
	}

	c.hub.BroadcastToRoom(c.roomCode, gameMoveMessage{
		Type:          typeGameMove,
		Pieces:        msg.Pieces,
		CurrentPlayer: msg.CurrentPlayer,
		PlayerID:      c.playerID,
	}, "")
}

// sendMessage marshals v and queues it for this connection only.
func (c *Client) sendMessage(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message")
		return
	}
	c.trySend(payload)
}

func (c *Client) sendError(message string) {
	c.sendMessage(errorMessage{Type: typeError, Message: message})
}

// trySend queues a payload without blocking. A full buffer drops this one
// payload for this one recipient; everyone else is unaffected.
func (c *Client) trySend(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		// Read from the fan-out goroutine; playerID belongs to the read pump,
		// so identify the connection by address instead.
		log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("send buffer full, dropping message")
		return false
	}
}
