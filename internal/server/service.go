package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/jerynmathew/thurup/internal/bot"
	"github.com/jerynmathew/thurup/internal/deck"
	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/store"
)

// cmdRevealTrump extends the session command set with the transport-level
// manual reveal action.
const cmdRevealTrump game.CommandType = "reveal_trump"

// Broadcaster pushes a fresh public snapshot to everyone watching a game.
// The WebSocket server implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastState(gameID string, state game.State)
}

// noopBroadcaster is used until the transport attaches.
type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastState(string, game.State) {}

// GameService owns game lifecycle: creation, seating, action dispatch,
// persistence, and driving bot seats. It sits between the transports (HTTP
// and WebSocket) and the sessions.
type GameService struct {
	logger   *log.Logger
	registry *Registry
	store    *store.Store // nil disables persistence
	clock    quartz.Clock
	defaults GameDefaults
	botDelay time.Duration

	baseCtx    context.Context
	cancelBots context.CancelFunc

	mu          sync.Mutex
	broadcaster Broadcaster
	runners     map[string]struct{}
}

// NewGameService wires the service. store may be nil for ephemeral servers.
func NewGameService(registry *Registry, st *store.Store, defaults GameDefaults, clock quartz.Clock, logger *log.Logger) *GameService {
	ctx, cancel := context.WithCancel(context.Background())
	return &GameService{
		logger:      logger.WithPrefix("service"),
		registry:    registry,
		store:       st,
		clock:       clock,
		defaults:    defaults,
		botDelay:    time.Duration(defaults.BotDelayMs) * time.Millisecond,
		baseCtx:     ctx,
		cancelBots:  cancel,
		runners:     make(map[string]struct{}),
		broadcaster: noopBroadcaster{},
	}
}

// Shutdown stops all bot runners.
func (gs *GameService) Shutdown() {
	gs.cancelBots()
}

// SetBroadcaster attaches the transport. Call before serving traffic.
func (gs *GameService) SetBroadcaster(b Broadcaster) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.broadcaster = b
}

// CreateGameRequest selects per-game overrides of the configured defaults.
type CreateGameRequest struct {
	Mode            string `json:"mode,omitempty"`
	Seats           int    `json:"seats,omitempty"`
	MinBid          int    `json:"min_bid,omitempty"`
	HiddenTrumpMode string `json:"hidden_trump_mode,omitempty"`
	Bots            int    `json:"bots,omitempty"`
}

// CreateGame builds a session from the request, seats any requested bots,
// registers it, and persists the initial snapshot.
func (gs *GameService) CreateGame(ctx context.Context, req CreateGameRequest) (*game.Session, error) {
	cfg := gs.defaults.SessionConfig()
	if req.Mode != "" {
		cfg.Mode = deck.Mode(req.Mode)
	}
	if req.Seats != 0 {
		cfg.Seats = req.Seats
	}
	if req.MinBid != 0 {
		cfg.MinBid = req.MinBid
	}
	if req.HiddenTrumpMode != "" {
		cfg.RevealMode = game.RevealMode(req.HiddenTrumpMode)
	}

	id := uuid.NewString()
	code := gs.registry.NewShortCode()
	s, err := game.NewSession(id, code, cfg, gs.logger)
	if err != nil {
		return nil, err
	}
	for i := 0; i < req.Bots; i++ {
		if _, err := s.AddPlayer(game.PlayerInfo{
			PlayerID: uuid.NewString(),
			Name:     fmt.Sprintf("bot-%d", i+1),
			IsBot:    true,
		}); err != nil {
			return nil, fmt.Errorf("seat bot %d: %w", i+1, err)
		}
	}

	gs.registry.Add(s)
	gs.persist(ctx, s)
	gs.logger.Info("game created", "game", id, "code", code, "mode", cfg.Mode, "seats", cfg.Seats, "bots", req.Bots)
	return s, nil
}

// Resolve finds a session by game id or short code.
func (gs *GameService) Resolve(idOrCode string) (*game.Session, bool) {
	return gs.registry.Resolve(idOrCode)
}

// Join seats a player in the game. When the table fills and auto start is
// configured, the first round begins immediately and bot seats start acting.
func (gs *GameService) Join(ctx context.Context, idOrCode, playerID, name string) (*game.Session, int, error) {
	s, ok := gs.registry.Resolve(idOrCode)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", store.ErrNotFound, idOrCode)
	}
	if s.SeatedCount() >= s.Seats() {
		return nil, 0, fmt.Errorf("game %s is full", s.ID())
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}
	seat, err := s.AddPlayer(game.PlayerInfo{PlayerID: playerID, Name: name})
	if err != nil {
		return nil, 0, err
	}

	if gs.defaults.AutoStart && s.SeatedCount() == s.Seats() && s.Phase() == game.PhaseLobby {
		if err := s.StartRound(0); err != nil {
			return nil, 0, err
		}
		gs.logger.Info("table full, round started", "game", s.ID())
	}
	gs.persist(ctx, s)
	gs.broadcast(s)
	gs.kickBots(ctx, s)
	return s, seat, nil
}

// Start begins the first round of a lobby game on demand.
func (gs *GameService) Start(ctx context.Context, idOrCode string, dealer int) error {
	s, ok := gs.registry.Resolve(idOrCode)
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, idOrCode)
	}
	if s.Phase() != game.PhaseLobby {
		return fmt.Errorf("game %s already started", s.ID())
	}
	if err := s.StartRound(dealer); err != nil {
		return err
	}
	gs.persist(ctx, s)
	gs.broadcast(s)
	gs.kickBots(ctx, s)
	return nil
}

// Apply runs one player action against the session. Accepted actions are
// persisted, broadcast, and may wake the bot runner.
func (gs *GameService) Apply(ctx context.Context, s *game.Session, cmd *game.Command) (bool, string) {
	ok, msg := gs.dispatch(s, cmd)
	if ok {
		gs.persist(ctx, s)
		gs.broadcast(s)
		gs.kickBots(ctx, s)
	}
	return ok, msg
}

func (gs *GameService) dispatch(s *game.Session, cmd *game.Command) (bool, string) {
	switch cmd.Type {
	case game.CmdPlaceBid:
		return s.PlaceBid(cmd.Seat, cmd.Value)
	case game.CmdChooseTrump:
		return s.ChooseTrump(cmd.Seat, cmd.Suit)
	case game.CmdPlayCard:
		return s.PlayCard(cmd.Seat, cmd.CardID)
	case cmdRevealTrump:
		return s.RevealTrump(cmd.Seat)
	default:
		return false, fmt.Sprintf("Unknown action %q", cmd.Type)
	}
}

// NextRound deals the following round of a scored game.
func (gs *GameService) NextRound(ctx context.Context, idOrCode string) error {
	s, ok := gs.registry.Resolve(idOrCode)
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, idOrCode)
	}
	if s.Phase() != game.PhaseScoring {
		return fmt.Errorf("game %s has no finished round to advance from", s.ID())
	}
	if err := s.StartRound(0); err != nil {
		return err
	}
	gs.persist(ctx, s)
	gs.broadcast(s)
	gs.kickBots(ctx, s)
	return nil
}

// RestoreAll loads every persisted session into the registry, used at boot.
func (gs *GameService) RestoreAll(ctx context.Context) error {
	if gs.store == nil {
		return nil
	}
	sessions, err := gs.store.LoadAll(ctx, gs.logger)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		gs.registry.Add(s)
	}
	if len(sessions) > 0 {
		gs.logger.Info("restored games from store", "count", len(sessions))
	}
	return nil
}

func (gs *GameService) persist(ctx context.Context, s *game.Session) {
	if gs.store == nil {
		return
	}
	if err := gs.store.SaveSession(ctx, s); err != nil {
		gs.logger.Error("failed to persist game", "game", s.ID(), "err", err)
	}
}

func (gs *GameService) broadcast(s *game.Session) {
	gs.mu.Lock()
	b := gs.broadcaster
	gs.mu.Unlock()
	b.BroadcastState(s.ID(), s.PublicState())
}

// kickBots starts a bot runner for the game unless one is already active.
// The runner outlives the triggering request, so it runs on the service's
// own context rather than the caller's.
func (gs *GameService) kickBots(_ context.Context, s *game.Session) {
	if !gs.hasActionableBot(s) {
		return
	}
	gs.mu.Lock()
	if _, running := gs.runners[s.ID()]; running {
		gs.mu.Unlock()
		return
	}
	gs.runners[s.ID()] = struct{}{}
	gs.mu.Unlock()

	r := newBotRunner(gs, s, bot.NewEasyStrategy(0), gs.clock, gs.botDelay, gs.logger)
	go func() {
		r.run(gs.baseCtx)
		gs.mu.Lock()
		delete(gs.runners, s.ID())
		gs.mu.Unlock()
	}()
}

func (gs *GameService) hasActionableBot(s *game.Session) bool {
	for seat := 0; seat < s.Seats(); seat++ {
		if s.IsBotSeat(seat) {
			return true
		}
	}
	return false
}
