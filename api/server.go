package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/parchis-live/relay/game/room"
	"github.com/parchis-live/relay/game/service"
	"github.com/parchis-live/relay/transport/websocket"
)

// ServiceName identifies this server in health payloads.
const ServiceName = "parchis-relay"

// Server is the HTTP front of the relay: health, the REST lobby API and the
// WebSocket endpoint.
type Server struct {
	service  service.RelayService
	hub      *websocket.Hub
	router   *mux.Router
	listings *listingCache
}

// NewServer creates a new API server over the given service and hub.
func NewServer(relay service.RelayService, hub *websocket.Hub) *Server {
	s := &Server{
		service:  relay,
		hub:      hub,
		router:   mux.NewRouter(),
		listings: newListingCache(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)

	// The root path doubles as a health endpoint so bare probes succeed.
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	players := 0
	if s.hub != nil {
		players = s.hub.ConnectionCount()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"rooms":     s.service.RoomCount(r.Context()),
		"players":   players,
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.listings.get(r.Context(), s.service.ListPublicRooms)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if rooms == nil {
		rooms = []room.Summary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]

	data, err := s.service.GetRoom(r.Context(), code)
	if errors.Is(err, room.ErrRoomNotFound) {
		respondError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roomCode": code,
		"roomData": data,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket transport unavailable", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r)
}
