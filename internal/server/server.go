package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/store"
)

// Server exposes the game service over HTTP and WebSocket. The HTTP API
// covers lifecycle (create, join, inspect); live play happens over the
// per-game WebSocket.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	service     *GameService
	httpServer  *http.Server
}

// NewServer creates a server bound to addr, serving the given service.
func NewServer(addr string, service *GameService, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		service:     service,
	}
	service.SetBroadcaster(s)
	return s
}

// routes builds the HTTP mux. Factored out so tests can serve it directly.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetState)
	mux.HandleFunc("POST /api/games/{id}/join", s.handleJoin)
	mux.HandleFunc("POST /api/games/{id}/start", s.handleStart)
	mux.HandleFunc("POST /api/games/{id}/next-round", s.handleNextRound)
	mux.HandleFunc("GET /api/games/{id}/hand", s.handleGetHand)
	mux.HandleFunc("GET /ws/games/{id}", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start runs the server until Stop or a listen error.
func (s *Server) Start() error {
	go s.run()

	s.httpServer = &http.Server{Addr: s.addr, Handler: s.routes()}
	s.logger.Info("Starting server", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop closes every connection and shuts the listener down.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "game", conn.GameID(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "game", conn.GameID(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// BroadcastState implements Broadcaster: every connection watching the game
// receives the fresh public snapshot.
func (s *Server) BroadcastState(gameID string, state game.State) {
	msg, err := NewMessage(MessageTypeStateSnapshot, state)
	if err != nil {
		s.logger.Error("Failed to encode state broadcast", "game", gameID, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GameID() != gameID {
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send state to client", "error", err)
		} else {
			count++
		}
	}
	s.logger.Debug("Broadcast state", "game", gameID, "recipients", count)
}

// handleWebSocket upgrades and binds the socket to its game.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.service.Resolve(r.PathValue("id"))
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, sess.ID(), s.logger, s.service)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// HTTP API

type createGameResponse struct {
	GameID    string `json:"game_id"`
	ShortCode string `json:"short_code"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	sess, err := s.service.CreateGame(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, createGameResponse{
		GameID:    sess.ID(),
		ShortCode: sess.ShortCode(),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.service.Resolve(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "game not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sess.PublicState())
}

type joinRequest struct {
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name"`
}

type joinResponse struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	sess, seat, err := s.service.Join(r.Context(), r.PathValue("id"), req.PlayerID, req.Name)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err.Error())
		return
	}
	p, _ := sess.PlayerAt(seat)
	s.writeJSON(w, http.StatusOK, joinResponse{
		GameID:   sess.ID(),
		PlayerID: p.PlayerID,
		Seat:     seat,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Start(r.Context(), r.PathValue("id"), 0); err != nil {
		status := http.StatusConflict
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request) {
	if err := s.service.NextRound(r.Context(), r.PathValue("id")); err != nil {
		status := http.StatusConflict
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetHand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.service.Resolve(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "game not found")
		return
	}
	seat, err := strconv.Atoi(r.URL.Query().Get("seat"))
	if err != nil || seat < 0 || seat >= sess.Seats() {
		s.writeError(w, http.StatusBadRequest, "seat must be a valid seat number")
		return
	}
	s.writeJSON(w, http.StatusOK, HandData{Seat: seat, Cards: sess.HandFor(seat)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorData{Code: http.StatusText(status), Message: message})
}
