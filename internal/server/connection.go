package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/jerynmathew/thurup/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to one client, bound to a
// single game for its whole lifetime.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	gameID    string
	playerID  string
	seat      int
	hasSeat   bool
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *GameService
}

// NewConnection creates a new connection wrapper for a game.
func NewConnection(conn *websocket.Conn, gameID string, logger *log.Logger, service *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		gameID:  gameID,
		seat:    -1,
		logger:  logger.WithPrefix("conn").With("game", gameID),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// GameID returns the game this connection is bound to.
func (c *Connection) GameID() string {
	return c.gameID
}

// Seat returns the seat claimed via identify, if any.
func (c *Connection) Seat() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat, c.hasSeat
}

func (c *Connection) setSeat(playerID string, seat int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.seat = seat
	c.hasSeat = true
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.playerID)

	switch msg.Type {
	case MessageTypeIdentify:
		var data IdentifyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse identify data")
			return
		}
		c.handleIdentify(data)

	case MessageTypeRequestState:
		c.handleRequestState()

	case MessageTypeRequestHand:
		var data RequestHandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse hand request")
			return
		}
		c.handleRequestHand(data)

	case MessageTypePlaceBid:
		var data PlaceBidData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bid data")
			return
		}
		c.handleAction(MessageTypePlaceBid, &game.Command{Type: game.CmdPlaceBid, Seat: data.Seat, Value: data.Value})

	case MessageTypeChooseTrump:
		var data ChooseTrumpData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse trump data")
			return
		}
		c.handleAction(MessageTypeChooseTrump, &game.Command{Type: game.CmdChooseTrump, Seat: data.Seat, Suit: data.Suit})

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		c.handleAction(MessageTypePlayCard, &game.Command{Type: game.CmdPlayCard, Seat: data.Seat, CardID: data.CardID})

	case MessageTypeRevealTrump:
		var data RevealTrumpData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse reveal data")
			return
		}
		c.handleAction(MessageTypeRevealTrump, &game.Command{Type: cmdRevealTrump, Seat: data.Seat})

	default:
		c.sendError("unknown_message", "Unknown message type: "+msg.Type.String())
	}
}

// handleIdentify seats the player (joining the game if they hold no seat
// yet) and replies with their identity.
func (c *Connection) handleIdentify(data IdentifyData) {
	s, ok := c.service.Resolve(c.gameID)
	if !ok {
		c.sendError("game_not_found", "Game not found: "+c.gameID)
		return
	}

	// Reconnect path: a known player id reclaims its seat.
	if data.PlayerID != "" {
		for seat := 0; seat < s.Seats(); seat++ {
			if p, occupied := s.PlayerAt(seat); occupied && p.PlayerID == data.PlayerID {
				c.setSeat(data.PlayerID, seat)
				c.sendIdentified(data.PlayerID, seat)
				return
			}
		}
	}

	if data.Name == "" {
		c.sendError("invalid_message", "Name is required to join")
		return
	}
	_, seat, err := c.service.Join(c.ctx, c.gameID, data.PlayerID, data.Name)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	p, _ := s.PlayerAt(seat)
	c.setSeat(p.PlayerID, seat)
	c.sendIdentified(p.PlayerID, seat)
}

func (c *Connection) sendIdentified(playerID string, seat int) {
	msg, err := NewMessage(MessageTypeIdentified, IdentifiedData{
		PlayerID: playerID,
		GameID:   c.gameID,
		Seat:     seat,
	})
	if err != nil {
		c.logger.Error("Failed to build identified message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) handleRequestState() {
	s, ok := c.service.Resolve(c.gameID)
	if !ok {
		c.sendError("game_not_found", "Game not found: "+c.gameID)
		return
	}
	msg, err := NewMessage(MessageTypeStateSnapshot, s.PublicState())
	if err != nil {
		c.logger.Error("Failed to encode state", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// handleRequestHand returns the private hand for the connection's own seat.
func (c *Connection) handleRequestHand(data RequestHandData) {
	s, ok := c.service.Resolve(c.gameID)
	if !ok {
		c.sendError("game_not_found", "Game not found: "+c.gameID)
		return
	}
	seat, identified := c.Seat()
	if !identified || seat != data.Seat {
		c.sendError("forbidden", "You can only request your own hand")
		return
	}
	msg, err := NewMessage(MessageTypeHand, HandData{Seat: seat, Cards: s.HandFor(seat)})
	if err != nil {
		c.logger.Error("Failed to encode hand", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// handleAction funnels every game action through the service so each
// accepted one is persisted and broadcast exactly once.
func (c *Connection) handleAction(action MessageType, cmd *game.Command) {
	s, ok := c.service.Resolve(c.gameID)
	if !ok {
		c.sendError("game_not_found", "Game not found: "+c.gameID)
		return
	}
	seat, identified := c.Seat()
	if !identified || seat != cmd.Seat {
		c.sendError("forbidden", "You can only act for your own seat")
		return
	}

	ok, resultMsg := c.service.Apply(c.ctx, s, cmd)
	resultType := MessageTypeActionOK
	if !ok {
		resultType = MessageTypeActionFailed
	}
	msg, err := NewMessage(resultType, ActionResultData{
		Action:  action,
		Seat:    cmd.Seat,
		Message: resultMsg,
	})
	if err != nil {
		c.logger.Error("Failed to build action result", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("Failed to build error message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}
