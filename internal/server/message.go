package server

import (
	"encoding/json"
	"time"

	"github.com/jerynmathew/thurup/internal/deck"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// IdentifyData carries no seat request: joining always takes the first free
// seat, and a reconnect reclaims the seat recorded for the player id.
type IdentifyData struct {
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name"`
}

type PlaceBidData struct {
	Seat  int  `json:"seat"`
	Value *int `json:"value"` // null or -1 means pass
}

type ChooseTrumpData struct {
	Seat int       `json:"seat"`
	Suit deck.Suit `json:"suit"`
}

type PlayCardData struct {
	Seat   int    `json:"seat"`
	CardID string `json:"card_id"`
}

type RevealTrumpData struct {
	Seat int `json:"seat"`
}

type RequestHandData struct {
	Seat int `json:"seat"`
}

// Server → Client Messages

type IdentifiedData struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Seat     int    `json:"seat"`
}

type ActionResultData struct {
	Action  MessageType `json:"action"`
	Seat    int         `json:"seat"`
	Message string      `json:"message"`
}

type HandData struct {
	Seat  int         `json:"seat"`
	Cards []deck.Card `json:"cards"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
