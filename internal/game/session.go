package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jerynmathew/thurup/internal/deck"
	"github.com/jerynmathew/thurup/internal/randutil"
)

// Contract violations. These indicate a caller bug, never a legal game
// scenario, and are returned as hard errors rather than (ok, msg) results.
var (
	ErrNoFreeSeat    = errors.New("no free seats")
	ErrInvalidPlayer = errors.New("player record must carry a name")
	ErrInvalidConfig = errors.New("invalid session config")
)

// Config holds the immutable parameters of a session.
type Config struct {
	Mode       deck.Mode
	Seats      int
	RevealMode RevealMode
	MinBid     int
	Seed       int64 // 0 selects a time-based seed
}

// DefaultConfig returns the standard 4-seat 28 game.
func DefaultConfig() Config {
	return Config{
		Mode:       deck.Mode28,
		Seats:      4,
		RevealMode: RevealOnFirstNonfollow,
		MinBid:     14,
	}
}

// Session is the server-authoritative state machine for one game. Every
// mutating method serializes on the write lock; reads take the read lock
// and compose a momentarily-consistent snapshot without blocking each
// other.
type Session struct {
	mu sync.RWMutex

	id        string
	shortCode string
	cfg       Config

	deckCards []deck.Card
	kitty     []deck.Card
	hands     [][]deck.Card
	players   map[int]PlayerInfo
	phase     Phase

	bidding *BiddingManager
	tricks  *TrickManager

	trump       *deck.Suit
	trumpHidden bool
	trumpOwner  *int

	dealer int
	leader int
	turn   int

	pointsBySeat  map[int]int
	history       []RoundRecord
	roundArchived bool

	rng    *rand.Rand
	logger *log.Logger
}

// RoundRecord archives one completed round for replay and reporting.
type RoundRecord struct {
	Round        int              `json:"round_number"`
	Dealer       int              `json:"dealer"`
	BidWinner    *int             `json:"bid_winner"`
	BidValue     *int             `json:"bid_value"`
	Trump        *deck.Suit       `json:"trump"`
	Tricks       []CompletedTrick `json:"captured_tricks"`
	PointsBySeat map[int]int      `json:"points_by_seat"`
	Teams        Scores           `json:"team_scores"`
}

// NewSession creates an empty session in the lobby phase.
func NewSession(id, shortCode string, cfg Config, logger *log.Logger) (*Session, error) {
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("%w: mode must be %q or %q", ErrInvalidConfig, deck.Mode28, deck.Mode56)
	}
	if cfg.Seats != 4 && cfg.Seats != 6 {
		return nil, fmt.Errorf("%w: seats must be 4 or 6, got %d", ErrInvalidConfig, cfg.Seats)
	}
	if cfg.RevealMode == "" {
		cfg.RevealMode = RevealOnFirstNonfollow
	}
	if !cfg.RevealMode.Valid() {
		return nil, fmt.Errorf("%w: unknown hidden trump mode %q", ErrInvalidConfig, cfg.RevealMode)
	}
	if cfg.MinBid <= 0 {
		cfg.MinBid = DefaultConfig().MinBid
	}
	if cfg.MinBid > cfg.Mode.MaxBid() {
		return nil, fmt.Errorf("%w: min bid %d exceeds mode maximum %d", ErrInvalidConfig, cfg.MinBid, cfg.Mode.MaxBid())
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Session{
		id:           id,
		shortCode:    shortCode,
		cfg:          cfg,
		hands:        make([][]deck.Card, cfg.Seats),
		players:      make(map[int]PlayerInfo),
		phase:        PhaseLobby,
		bidding:      NewBiddingManager(cfg.Seats),
		tricks:       NewTrickManager(),
		trumpHidden:  true,
		pointsBySeat: zeroPoints(cfg.Seats),
		rng:          randutil.New(seed),
		logger:       logger.WithPrefix("session").With("game", id),
	}, nil
}

func zeroPoints(seats int) map[int]int {
	m := make(map[int]int, seats)
	for i := 0; i < seats; i++ {
		m[i] = 0
	}
	return m
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ShortCode returns the memorable join code, if any.
func (s *Session) ShortCode() string { return s.shortCode }

// Mode returns the game mode.
func (s *Session) Mode() deck.Mode { return s.cfg.Mode }

// Seats returns the configured seat count.
func (s *Session) Seats() int { return s.cfg.Seats }

// MinBid returns the minimum legal numeric bid.
func (s *Session) MinBid() int { return s.cfg.MinBid }

// Phase returns the current state machine position.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Turn returns the seat currently entitled to act.
func (s *Session) Turn() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turn
}

// PlayerAt returns the occupant of a seat, if any.
func (s *Session) PlayerAt(seat int) (PlayerInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[seat]
	return p, ok
}

// IsBotSeat reports whether the seat is occupied by a bot.
func (s *Session) IsBotSeat(seat int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[seat]
	return ok && p.IsBot
}

// SeatedCount returns how many seats are occupied.
func (s *Session) SeatedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// BidWinner returns the seat owning the highest bid, if any.
func (s *Session) BidWinner() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bidding.Winner()
}

// AddPlayer assigns the first free seat to the player. Exhausting the seats
// is a caller bug (the transport layer must gate joins), so it is a hard
// error rather than a game-rule rejection.
func (s *Session) AddPlayer(p PlayerInfo) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name == "" {
		return 0, ErrInvalidPlayer
	}
	for seat := 0; seat < s.cfg.Seats; seat++ {
		if _, taken := s.players[seat]; !taken {
			p.Seat = seat
			s.players[seat] = p
			s.logger.Info("player seated", "seat", seat, "name", p.Name, "bot", p.IsBot)
			return seat, nil
		}
	}
	return 0, ErrNoFreeSeat
}

// RemovePlayer vacates a seat. Removing an empty seat is a no-op.
func (s *Session) RemovePlayer(seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, seat)
}

// StartRound archives the previous round (if any), rotates the dealer,
// deals a fresh shuffle, and enters the bidding phase. The dealer argument
// only applies to the first round; later rounds rotate clockwise.
func (s *Session) StartRound(dealer int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startRoundLocked(dealer)
}

// startRoundLocked is the body of StartRound and must be called with the
// session lock held. PlaceBid invokes it directly for the all-pass redeal so
// the redeal happens atomically inside the same critical section, leaving no
// window in which another caller could act on the finished bidding round.
func (s *Session) startRoundLocked(dealer int) error {
	switch {
	case len(s.tricks.captured) > 0:
		if !s.roundArchived {
			s.archiveRoundLocked()
		}
		s.dealer = (s.dealer + 1) % s.cfg.Seats
		s.logger.Info("dealer rotated", "dealer", s.dealer)
	case s.phase == PhaseLobby:
		s.dealer = dealer
	default:
		// Redeal after an all-pass round: same dealer deals again.
	}

	s.phase = PhaseDealing
	s.deckCards = deck.Shuffle(deck.New(s.cfg.Mode), s.rng)
	hands, kitty, err := deck.Deal(s.deckCards, s.cfg.Seats)
	if err != nil {
		return err
	}
	s.hands = hands
	s.kitty = kitty

	// Turn order runs in a fixed direction: the leader is the seat "after"
	// the dealer in play order, i.e. (dealer-1) mod seats, and every turn
	// advance subtracts one. This is what makes the whole bid/play sequence
	// deterministic.
	s.leader = mod(s.dealer-1, s.cfg.Seats)
	s.turn = s.leader

	s.phase = PhaseBidding
	s.bidding.Reset()
	s.tricks.Reset()
	s.trump = nil
	s.trumpHidden = true
	s.trumpOwner = nil
	s.pointsBySeat = zeroPoints(s.cfg.Seats)
	s.roundArchived = false

	s.logger.Info("round started", "dealer", s.dealer, "leader", s.leader)
	return nil
}

// archiveRoundLocked appends the finished round to history. Lock held.
func (s *Session) archiveRoundLocked() {
	winner := s.bidding.winner
	value := s.bidding.value
	rec := RoundRecord{
		Round:        len(s.history) + 1,
		Dealer:       s.dealer,
		BidWinner:    copyIntPtr(winner),
		BidValue:     copyIntPtr(value),
		Trump:        copySuitPtr(s.trump),
		Tricks:       s.tricks.Captured(),
		PointsBySeat: copyPoints(s.pointsBySeat),
		Teams:        computeScores(s.pointsBySeat, winner, value),
	}
	s.history = append(s.history, rec)
	s.roundArchived = true
	s.logger.Info("round archived", "round", rec.Round, "teams", rec.Teams.TeamPoints)
}

// PlaceBid records a bid for the seat whose turn it is. A nil value or
// BidPass means pass; a numeric bid must be within [minBid, mode max] and
// strictly above the current highest. When the last seat acts, either the
// bid winner proceeds to trump selection or an all-pass round is redealt.
func (s *Session) PlaceBid(seat int, value *int) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseBidding {
		return false, "Not in bidding phase"
	}
	if _, ok := s.players[seat]; !ok {
		return false, "Unknown seat"
	}
	if seat != s.turn {
		return false, "Not your turn to bid"
	}
	if ok, msg := s.bidding.Validate(seat, value, s.cfg.MinBid, s.cfg.Mode.MaxBid()); !ok {
		return false, msg
	}
	if ok, msg := s.bidding.Record(seat, value); !ok {
		return false, msg
	}

	s.turn = mod(s.turn-1, s.cfg.Seats)

	if !s.bidding.IsComplete() {
		return true, "Bid accepted"
	}
	if s.bidding.AllPassed() {
		if err := s.startRoundLocked(s.dealer); err != nil {
			return false, fmt.Sprintf("Redeal failed: %v", err)
		}
		s.logger.Info("all passed, redealt")
		return true, "All passed: redealt"
	}
	s.phase = PhaseChooseTrump
	winner, _ := s.bidding.Winner()
	highest, _ := s.bidding.Highest()
	s.logger.Info("bidding complete", "winner", winner, "bid", highest)
	return true, "Bid accepted; bidding complete"
}

// ChooseTrump lets the bid winner name the trump suit. Trump starts hidden
// and play begins with the round leader.
func (s *Session) ChooseTrump(seat int, suit deck.Suit) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseChooseTrump {
		return false, "Not waiting for trump"
	}
	winner, ok := s.bidding.Winner()
	if !ok || seat != winner {
		return false, "Only bid winner can choose trump"
	}
	if suit < deck.Spades || suit > deck.Clubs {
		return false, "Invalid suit (must be ♠, ♥, ♦, or ♣)"
	}

	t := suit
	s.trump = &t
	s.trumpHidden = true
	owner := seat
	s.trumpOwner = &owner
	s.phase = PhasePlay
	s.turn = s.leader
	s.logger.Info("trump chosen", "seat", seat)
	return true, "Trump chosen"
}

// RevealTrump is the player-initiated reveal path: legal only when it is
// the seat's turn, trump is hidden, the seat is not leading the trick, and
// the seat cannot follow the lead suit.
func (s *Session) RevealTrump(seat int) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlay {
		return false, "Not in play phase"
	}
	if _, ok := s.players[seat]; !ok {
		return false, "Unknown seat"
	}
	if ok, msg := validateManualReveal(s.trumpHidden, seat, s.turn, s.tricks.current, s.hands[seat]); !ok {
		return false, msg
	}

	s.trumpHidden = false
	s.logger.Info("trump revealed manually", "seat", seat, "trump", *s.trump)
	return true, fmt.Sprintf("Trump revealed: %s", *s.trump)
}

// PlayCard validates and applies a play for the seat whose turn it is.
// When the trick fills, it is resolved and the winner leads the next one;
// when the last trick of the round resolves, the session enters scoring and
// the round is archived.
func (s *Session) PlayCard(seat int, cardID string) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlay {
		return false, "Not in play phase"
	}
	if seat < 0 || seat >= s.cfg.Seats {
		return false, "Unknown seat"
	}
	if seat != s.turn {
		return false, "Not your turn"
	}

	cardIdx := -1
	for i, c := range s.hands[seat] {
		if c.UID == cardID {
			cardIdx = i
			break
		}
	}
	if cardIdx < 0 {
		return false, "Card not in hand"
	}
	card := s.hands[seat][cardIdx]

	if lead, started := s.tricks.LeadSuit(); started {
		if handHasSuit(s.hands[seat], lead) && card.Suit != lead {
			return false, "Must follow suit if possible"
		}
	}

	// The reveal policy evaluates the situation as it stood before the
	// play: the trick without this card and the hand still holding it.
	handBefore := append([]deck.Card(nil), s.hands[seat]...)
	trickBefore := s.tricks.Current()

	s.hands[seat] = append(s.hands[seat][:cardIdx], s.hands[seat][cardIdx+1:]...)
	s.tricks.Add(seat, card)

	if reveal, reason := shouldRevealTrump(revealCheck{
		hidden:     s.trumpHidden,
		mode:       s.cfg.RevealMode,
		played:     card,
		trump:      s.trump,
		trumpOwner: s.trumpOwner,
		seat:       seat,
		trick:      trickBefore,
		hand:       handBefore,
	}); reveal {
		s.trumpHidden = false
		s.logger.Info("trump revealed automatically", "reason", reason, "trump", *s.trump)
	}

	s.turn = mod(s.turn-1, s.cfg.Seats)

	if !s.tricks.IsComplete(s.cfg.Seats) {
		return true, "Card played"
	}

	var visibleTrump *deck.Suit
	if !s.trumpHidden {
		visibleTrump = s.trump
	}
	winner, pts, err := s.tricks.Complete(visibleTrump, s.pointsBySeat)
	if err != nil {
		// Unreachable: the trick was just verified complete.
		return false, err.Error()
	}
	s.leader = winner
	s.turn = winner

	if s.handsEmpty() {
		s.phase = PhaseScoring
		s.archiveRoundLocked()
		s.logger.Info("round complete", "teams", computeScores(s.pointsBySeat, s.bidding.winner, s.bidding.value).TeamPoints)
	}
	return true, fmt.Sprintf("Trick complete. Winner: %d (+%d pts)", winner, pts)
}

func (s *Session) handsEmpty() bool {
	for _, h := range s.hands {
		if len(h) > 0 {
			return false
		}
	}
	return true
}

// ComputeScores partitions seats into two teams by parity, sums team points,
// and evaluates the bid if one was won. Pure read, callable at any time.
func (s *Session) ComputeScores() Scores {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeScores(s.pointsBySeat, s.bidding.winner, s.bidding.value)
}

// HandFor returns a copy of the seat's current hand, or nil for an invalid
// seat.
func (s *Session) HandFor(seat int) []deck.Card {
	if seat < 0 || seat >= s.cfg.Seats {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]deck.Card(nil), s.hands[seat]...)
}

// mod is the always-positive remainder; Go's % follows the sign of the
// dividend, which would break the fixed-direction turn rotation.
func mod(a, n int) int {
	return ((a % n) + n) % n
}

func copySuitPtr(p *deck.Suit) *deck.Suit {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyPoints(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
