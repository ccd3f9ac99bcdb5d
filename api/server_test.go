package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parchis-live/relay/game/room"
	"github.com/parchis-live/relay/game/service"
)

// MockRelayService implements service.RelayService for testing
type MockRelayService struct {
	CreateRoomFunc      func(ctx context.Context, playerName, playerColor string) (*service.CreateRoomResult, error)
	JoinRoomFunc        func(ctx context.Context, roomCode, playerName, playerColor string) (*service.JoinRoomResult, error)
	LeaveRoomFunc       func(ctx context.Context, roomCode, playerID string) (*service.LeaveRoomResult, error)
	GetRoomFunc         func(ctx context.Context, roomCode string) (*room.Data, error)
	ListPublicRoomsFunc func(ctx context.Context) ([]room.Summary, error)
	RoomCountFunc       func(ctx context.Context) int
	RecordDiceRollFunc  func(ctx context.Context, roomCode string, diceValue, currentPlayer int) error
	RecordGameMoveFunc  func(ctx context.Context, roomCode string, pieces json.RawMessage, currentPlayer int) error
}

func (m *MockRelayService) CreateRoom(ctx context.Context, playerName, playerColor string) (*service.CreateRoomResult, error) {
	if m.CreateRoomFunc != nil {
		return m.CreateRoomFunc(ctx, playerName, playerColor)
	}
	return &service.CreateRoomResult{RoomCode: "TEST01"}, nil
}

func (m *MockRelayService) JoinRoom(ctx context.Context, roomCode, playerName, playerColor string) (*service.JoinRoomResult, error) {
	if m.JoinRoomFunc != nil {
		return m.JoinRoomFunc(ctx, roomCode, playerName, playerColor)
	}
	return &service.JoinRoomResult{RoomCode: roomCode}, nil
}

func (m *MockRelayService) LeaveRoom(ctx context.Context, roomCode, playerID string) (*service.LeaveRoomResult, error) {
	if m.LeaveRoomFunc != nil {
		return m.LeaveRoomFunc(ctx, roomCode, playerID)
	}
	return &service.LeaveRoomResult{RoomCode: roomCode, PlayerID: playerID}, nil
}

func (m *MockRelayService) GetRoom(ctx context.Context, roomCode string) (*room.Data, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, roomCode)
	}
	return &room.Data{}, nil
}

func (m *MockRelayService) ListPublicRooms(ctx context.Context) ([]room.Summary, error) {
	if m.ListPublicRoomsFunc != nil {
		return m.ListPublicRoomsFunc(ctx)
	}
	return []room.Summary{}, nil
}

func (m *MockRelayService) RoomCount(ctx context.Context) int {
	if m.RoomCountFunc != nil {
		return m.RoomCountFunc(ctx)
	}
	return 0
}

func (m *MockRelayService) RecordDiceRoll(ctx context.Context, roomCode string, diceValue, currentPlayer int) error {
	if m.RecordDiceRollFunc != nil {
		return m.RecordDiceRollFunc(ctx, roomCode, diceValue, currentPlayer)
	}
	return nil
}

func (m *MockRelayService) RecordGameMove(ctx context.Context, roomCode string, pieces json.RawMessage, currentPlayer int) error {
	if m.RecordGameMoveFunc != nil {
		return m.RecordGameMoveFunc(ctx, roomCode, pieces, currentPlayer)
	}
	return nil
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	mock := &MockRelayService{
		RoomCountFunc: func(ctx context.Context) int { return 3 },
	}
	server := NewServer(mock, nil)

	for _, path := range []string{"/health", "/"} {
		rec := doRequest(t, server, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}

		body := decodeBody(t, rec)
		if body["status"] != "healthy" {
			t.Errorf("%s: expected healthy status, got %v", path, body["status"])
		}
		if body["service"] != ServiceName {
			t.Errorf("%s: expected service %s, got %v", path, ServiceName, body["service"])
		}
		if body["rooms"] != float64(3) {
			t.Errorf("%s: expected 3 rooms, got %v", path, body["rooms"])
		}
		if body["players"] != float64(0) {
			t.Errorf("%s: expected 0 players, got %v", path, body["players"])
		}
		if body["timestamp"] == "" {
			t.Errorf("%s: expected a timestamp", path)
		}
	}
}

func TestListRooms(t *testing.T) {
	mock := &MockRelayService{
		ListPublicRoomsFunc: func(ctx context.Context) ([]room.Summary, error) {
			return []room.Summary{{
				RoomCode:    "ABC123",
				HostName:    "alice",
				PlayerCount: 2,
				MaxPlayers:  room.MaxPlayers,
				Status:      room.StatusWaiting,
			}}, nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/rooms")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Errorf("expected count 1, got %v", body["count"])
	}
	rooms := body["rooms"].([]interface{})
	first := rooms[0].(map[string]interface{})
	if first["roomCode"] != "ABC123" {
		t.Errorf("expected room ABC123, got %v", first["roomCode"])
	}
	if first["hostName"] != "alice" {
		t.Errorf("expected host alice, got %v", first["hostName"])
	}
}

func TestListRoomsIsCached(t *testing.T) {
	calls := 0
	mock := &MockRelayService{
		ListPublicRoomsFunc: func(ctx context.Context) ([]room.Summary, error) {
			calls++
			return []room.Summary{}, nil
		},
	}
	server := NewServer(mock, nil)

	doRequest(t, server, http.MethodGet, "/api/rooms")
	doRequest(t, server, http.MethodGet, "/api/rooms")

	if calls != 1 {
		t.Errorf("expected 1 service call for back-to-back polls, got %d", calls)
	}
}

func TestListRoomsEmptyIsArray(t *testing.T) {
	mock := &MockRelayService{
		ListPublicRoomsFunc: func(ctx context.Context) ([]room.Summary, error) {
			return nil, nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/rooms")
	if !strings.Contains(rec.Body.String(), `"rooms":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestListRoomsError(t *testing.T) {
	mock := &MockRelayService{
		ListPublicRoomsFunc: func(ctx context.Context) ([]room.Summary, error) {
			return nil, errors.New("store unavailable")
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/rooms")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestGetRoom(t *testing.T) {
	mock := &MockRelayService{
		GetRoomFunc: func(ctx context.Context, roomCode string) (*room.Data, error) {
			if roomCode != "ABC123" {
				t.Errorf("expected lookup of ABC123, got %s", roomCode)
			}
			return &room.Data{
				Players: []room.Player{{ID: "p1", Name: "alice", IsHost: true}},
			}, nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/rooms/ABC123")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["roomCode"] != "ABC123" {
		t.Errorf("expected roomCode ABC123, got %v", body["roomCode"])
	}
	roomData := body["roomData"].(map[string]interface{})
	players := roomData["players"].([]interface{})
	if len(players) != 1 {
		t.Errorf("expected 1 player, got %d", len(players))
	}
}

func TestGetRoomNotFound(t *testing.T) {
	mock := &MockRelayService{
		GetRoomFunc: func(ctx context.Context, roomCode string) (*room.Data, error) {
			return nil, room.ErrRoomNotFound
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/rooms/ZZZ999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["error"] != "room not found" {
		t.Errorf("unexpected error message %v", body["error"])
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	server := NewServer(&MockRelayService{}, nil)

	rec := doRequest(t, server, http.MethodGet, "/ws")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
