package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/parchis-live/relay/game/room"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Parchis Relay",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Parchis Relay - MCP Interface

This is a thin client that proxies all requests to the relay's REST API.

The relay hosts multiplayer Parchis rooms. Players connect over WebSocket,
join rooms by 6-character code and exchange game state. These tools give a
read-only view of the lobby.

AVAILABLE TOOLS:
- list_rooms: List joinable public rooms
- get_room: Get players and game state of a specific room
- server_stats: Get relay health, room and player counts

Joining and playing is WebSocket-only; there is no tool for it.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List public rooms that are waiting for players and have a free seat",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get the players and current game state of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "6-character room code",
				},
			},
			Required: []string{"room_code"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get relay health plus live room and player counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall issues a GET against the REST API and decodes the JSON response.
func (c *Client) apiCall(path string, result interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int            `json:"count"`
		Rooms []room.Summary `json:"rooms"`
	}

	err := c.apiCall("/api/rooms", &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No public rooms are waiting for players."), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Public Rooms (%d):\n\n", response.Count))
	for _, r := range response.Rooms {
		b.WriteString(fmt.Sprintf("- %s (Host: %s, Players: %d/%d, Status: %s)\n",
			r.RoomCode, r.HostName, r.PlayerCount, r.MaxPlayers, r.Status))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)

	var response struct {
		RoomCode string    `json:"roomCode"`
		RoomData room.Data `json:"roomData"`
	}

	err := c.apiCall(fmt.Sprintf("/api/rooms/%s", roomCode), &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomData(response.RoomCode, &response.RoomData)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Status    string `json:"status"`
		Service   string `json:"service"`
		Timestamp string `json:"timestamp"`
		Rooms     int    `json:"rooms"`
		Players   int    `json:"players"`
	}

	err := c.apiCall("/health", &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Service: %s\nStatus: %s\nActive rooms: %d\nConnected players: %d\nAs of: %s",
		response.Service, response.Status, response.Rooms, response.Players, response.Timestamp)
	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatRoomData(roomCode string, data *room.Data) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Room: %s\n", roomCode))
	b.WriteString(fmt.Sprintf("Players (%d/%d):\n", len(data.Players), room.MaxPlayers))

	for _, p := range data.Players {
		role := "guest"
		if p.IsHost {
			role = "host"
		}
		joined := time.UnixMilli(p.JoinedAt).UTC().Format("15:04:05")
		b.WriteString(fmt.Sprintf("- %s (%s, color: %s, joined: %s)\n", p.Name, role, p.Color, joined))
	}

	gs := data.GameState
	switch {
	case gs.GameEnded:
		b.WriteString("\nGame finished.\n")
	case gs.GameStarted:
		b.WriteString(fmt.Sprintf("\nGame in progress: player %d to act, last dice roll %d.\n",
			gs.CurrentPlayer, gs.DiceValue))
	default:
		b.WriteString("\nWaiting for the host to start the game.\n")
	}

	return b.String()
}
