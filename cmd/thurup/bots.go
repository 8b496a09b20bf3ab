package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/jerynmathew/thurup/internal/bot"
	"github.com/jerynmathew/thurup/internal/deck"
	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/server"
)

// BotsCmd joins bot players to a running game over WebSocket, the same way
// a remote client would.
type BotsCmd struct {
	URL   string `kong:"default='ws://localhost:8080',help='Server base URL'"`
	Game  string `kong:"arg='',help='Game id or short code to join'"`
	Count int    `kong:"default='1',short='n',help='Number of bots to connect'"`
	Seed  int64  `kong:"help='RNG seed for bot decisions (0 means random)'"`
	Debug bool   `kong:"help='Enable debug logging'"`
}

func (c *BotsCmd) Run() error {
	logger := setupLogger("info", c.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.Count; i++ {
		name := fmt.Sprintf("ws-bot-%d", i+1)
		seed := c.Seed
		if seed != 0 {
			seed += int64(i)
		}
		g.Go(func() error {
			b := &wsBot{
				url:    fmt.Sprintf("%s/ws/games/%s", c.URL, c.Game),
				name:   name,
				strat:  bot.NewEasyStrategy(seed),
				logger: logger.WithPrefix("wsbot").With("name", name),
			}
			return b.run(ctx)
		})
	}
	return g.Wait()
}

// wsBot is a remote bot client: it identifies over the game socket and
// answers each state snapshot where it holds the turn.
type wsBot struct {
	url    string
	name   string
	strat  game.Strategy
	logger *log.Logger

	conn *websocket.Conn
	seat int

	// pending holds the snapshot the bot is acting on while it waits for
	// its hand to arrive.
	pending *game.State
}

func (b *wsBot) run(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", b.url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	b.conn = conn
	b.seat = -1
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if err := b.send(server.MessageTypeIdentify, server.IdentifyData{Name: b.name}); err != nil {
		return err
	}

	for {
		var msg server.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := b.handle(&msg); err != nil {
			return err
		}
	}
}

func (b *wsBot) handle(msg *server.Message) error {
	switch msg.Type {
	case server.MessageTypeIdentified:
		var data server.IdentifiedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		b.seat = data.Seat
		b.logger.Info("seated", "seat", b.seat)
		return b.send(server.MessageTypeRequestState, struct{}{})

	case server.MessageTypeStateSnapshot:
		var state game.State
		if err := json.Unmarshal(msg.Data, &state); err != nil {
			return err
		}
		return b.onState(&state)

	case server.MessageTypeHand:
		var data server.HandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		return b.onHand(data.Cards)

	case server.MessageTypeActionFailed:
		var data server.ActionResultData
		_ = json.Unmarshal(msg.Data, &data)
		// Stale snapshot, usually a race with another seat. Resync.
		b.logger.Debug("action rejected", "msg", data.Message)
		return b.send(server.MessageTypeRequestState, struct{}{})

	case server.MessageTypeError:
		var data server.ErrorData
		_ = json.Unmarshal(msg.Data, &data)
		return fmt.Errorf("server error %s: %s", data.Code, data.Message)
	}
	return nil
}

// onState requests the hand when it is this bot's turn to do something.
func (b *wsBot) onState(state *game.State) error {
	if b.seat < 0 || b.pending != nil {
		return nil
	}
	actionable := false
	switch state.Phase {
	case game.PhaseBidding, game.PhasePlay:
		actionable = state.Turn == b.seat
	case game.PhaseChooseTrump:
		actionable = state.BidWinner != nil && *state.BidWinner == b.seat
	}
	if !actionable {
		return nil
	}
	b.pending = state
	return b.send(server.MessageTypeRequestHand, server.RequestHandData{Seat: b.seat})
}

// onHand computes and sends the action for the snapshot that requested it.
func (b *wsBot) onHand(hand []deck.Card) error {
	state := b.pending
	b.pending = nil
	if state == nil || len(hand) == 0 {
		return nil
	}

	switch state.Phase {
	case game.PhaseBidding:
		value := b.strat.ChooseBid(hand, state.MinBid, state.Mode.MaxBid(), state.CurrentHighest)
		b.logger.Debug("bidding", "value", value)
		return b.send(server.MessageTypePlaceBid, server.PlaceBidData{Seat: b.seat, Value: &value})

	case game.PhaseChooseTrump:
		suit := b.strat.ChooseTrump(hand)
		b.logger.Debug("choosing trump", "suit", suit)
		return b.send(server.MessageTypeChooseTrump, server.ChooseTrumpData{Seat: b.seat, Suit: suit})

	case game.PhasePlay:
		card := b.strat.ChooseCard(hand, state.LeadSuit, state.Trump)
		b.logger.Debug("playing", "card", card.UID)
		return b.send(server.MessageTypePlayCard, server.PlayCardData{Seat: b.seat, CardID: card.UID})
	}
	return nil
}

func (b *wsBot) send(mt server.MessageType, data any) error {
	msg, err := server.NewMessage(mt, data)
	if err != nil {
		return err
	}
	_ = b.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return b.conn.WriteJSON(msg)
}
