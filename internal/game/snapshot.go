package game

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jerynmathew/thurup/internal/deck"
)

// Snapshot is the full serialized form of a session, including hidden
// state. It exists for persistence only and must never cross the transport
// boundary.
type Snapshot struct {
	GameID         string            `json:"game_id"`
	ShortCode      string            `json:"short_code"`
	Mode           deck.Mode         `json:"mode"`
	Seats          int               `json:"seats"`
	RevealMode     RevealMode        `json:"hidden_trump_mode"`
	MinBid         int               `json:"min_bid"`
	Phase          Phase             `json:"state"`
	Deck           []deck.Card       `json:"deck"`
	Kitty          []deck.Card       `json:"kitty"`
	Hands          [][]deck.Card     `json:"hands"`
	Bids           []*int            `json:"bids"`
	CurrentHighest *int              `json:"current_highest"`
	BidWinner      *int              `json:"bid_winner"`
	BidValue       *int              `json:"bid_value"`
	Trump          *deck.Suit        `json:"trump"`
	TrumpHidden    bool              `json:"trump_hidden"`
	TrumpOwner     *int              `json:"trump_owner"`
	Dealer         int               `json:"dealer"`
	Leader         int               `json:"leader"`
	Turn           int               `json:"turn"`
	CurrentTrick   []deck.PlayedCard `json:"current_trick"`
	LastTrick      *CompletedTrick   `json:"last_trick"`
	CapturedTricks []CompletedTrick  `json:"captured_tricks"`
	PointsBySeat   map[int]int       `json:"points_by_seat"`
	Players        []PlayerInfo      `json:"players"`
	RoundsHistory  []RoundRecord     `json:"rounds_history"`
	RoundArchived  bool              `json:"round_archived"`
}

// Snapshot captures the complete session state under the read lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hands := make([][]deck.Card, len(s.hands))
	for i, h := range s.hands {
		hands[i] = append([]deck.Card(nil), h...)
	}
	players := make([]PlayerInfo, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}

	return Snapshot{
		GameID:         s.id,
		ShortCode:      s.shortCode,
		Mode:           s.cfg.Mode,
		Seats:          s.cfg.Seats,
		RevealMode:     s.cfg.RevealMode,
		MinBid:         s.cfg.MinBid,
		Phase:          s.phase,
		Deck:           append([]deck.Card(nil), s.deckCards...),
		Kitty:          append([]deck.Card(nil), s.kitty...),
		Hands:          hands,
		Bids:           s.bidding.Bids(),
		CurrentHighest: copyIntPtr(s.bidding.highest),
		BidWinner:      copyIntPtr(s.bidding.winner),
		BidValue:       copyIntPtr(s.bidding.value),
		Trump:          copySuitPtr(s.trump),
		TrumpHidden:    s.trumpHidden,
		TrumpOwner:     copyIntPtr(s.trumpOwner),
		Dealer:         s.dealer,
		Leader:         s.leader,
		Turn:           s.turn,
		CurrentTrick:   s.tricks.Current(),
		LastTrick:      s.tricks.Last(),
		CapturedTricks: s.tricks.Captured(),
		PointsBySeat:   copyPoints(s.pointsBySeat),
		Players:        players,
		RoundsHistory:  append([]RoundRecord(nil), s.history...),
		RoundArchived:  s.roundArchived,
	}
}

// Restore rebuilds a session from a snapshot. The restored session gets a
// fresh time-seeded RNG: the deal it would affect was already drawn before
// the snapshot was taken.
func Restore(snap Snapshot, logger *log.Logger) (*Session, error) {
	cfg := Config{
		Mode:       snap.Mode,
		Seats:      snap.Seats,
		RevealMode: snap.RevealMode,
		MinBid:     snap.MinBid,
	}
	s, err := NewSession(snap.GameID, snap.ShortCode, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", snap.GameID, err)
	}
	if len(snap.Hands) != snap.Seats {
		return nil, fmt.Errorf("restore %s: %d hands for %d seats", snap.GameID, len(snap.Hands), snap.Seats)
	}
	if len(snap.Bids) != snap.Seats {
		return nil, fmt.Errorf("restore %s: %d bid slots for %d seats", snap.GameID, len(snap.Bids), snap.Seats)
	}

	s.phase = snap.Phase
	s.deckCards = append([]deck.Card(nil), snap.Deck...)
	s.kitty = append([]deck.Card(nil), snap.Kitty...)
	s.hands = make([][]deck.Card, snap.Seats)
	for i, h := range snap.Hands {
		s.hands[i] = append([]deck.Card(nil), h...)
	}
	s.bidding.Restore(snap.Bids, snap.CurrentHighest, snap.BidWinner, snap.BidValue)
	s.trump = copySuitPtr(snap.Trump)
	s.trumpHidden = snap.TrumpHidden
	s.trumpOwner = copyIntPtr(snap.TrumpOwner)
	s.dealer = snap.Dealer
	s.leader = snap.Leader
	s.turn = snap.Turn
	s.tricks.Restore(snap.CurrentTrick, snap.LastTrick, snap.CapturedTricks)
	s.pointsBySeat = copyPoints(snap.PointsBySeat)
	for _, p := range snap.Players {
		if p.Seat < 0 || p.Seat >= snap.Seats {
			return nil, fmt.Errorf("restore %s: player %q at invalid seat %d", snap.GameID, p.Name, p.Seat)
		}
		s.players[p.Seat] = p
	}
	s.history = append([]RoundRecord(nil), snap.RoundsHistory...)
	s.roundArchived = snap.RoundArchived
	return s, nil
}
