package game

import (
	"sort"

	"github.com/jerynmathew/thurup/internal/deck"
)

// State is the public, spectator-safe view of a session: hidden trump stays
// nil and hands are reduced to sizes. It is what the transport layer
// broadcasts after every accepted action.
type State struct {
	GameID         string            `json:"game_id"`
	ShortCode      string            `json:"short_code,omitempty"`
	Mode           deck.Mode         `json:"mode"`
	Seats          int               `json:"seats"`
	MinBid         int               `json:"min_bid"`
	Phase          Phase             `json:"state"`
	Players        []PlayerInfo      `json:"players"`
	Dealer         int               `json:"dealer"`
	Leader         int               `json:"leader"`
	Turn           int               `json:"turn"`
	Trump          *deck.Suit        `json:"trump"`
	Kitty          []deck.Card       `json:"kitty"`
	HandSizes      map[int]int       `json:"hand_sizes"`
	Bids           map[int]*int      `json:"bids"`
	CurrentHighest *int              `json:"current_highest"`
	BidWinner      *int              `json:"bid_winner"`
	BidValue       *int              `json:"bid_value"`
	PointsBySeat   map[int]int       `json:"points_by_seat"`
	CurrentTrick   []deck.PlayedCard `json:"current_trick"`
	LeadSuit       *deck.Suit        `json:"lead_suit,omitempty"`
	LastTrick      *CompletedTrick   `json:"last_trick,omitempty"`
	RoundsHistory  []RoundRecord     `json:"rounds_history"`
}

// PublicState builds the broadcast view under the read lock, so spectators
// never observe a half-applied action and never race the mutators.
func (s *Session) PublicState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]PlayerInfo, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })

	handSizes := make(map[int]int, s.cfg.Seats)
	for seat, h := range s.hands {
		handSizes[seat] = len(h)
	}

	bids := make(map[int]*int, s.cfg.Seats)
	for seat, b := range s.bidding.Bids() {
		bids[seat] = b
	}

	// Hidden trump never leaves the session.
	var trump *deck.Suit
	if !s.trumpHidden {
		trump = copySuitPtr(s.trump)
	}

	var leadSuit *deck.Suit
	if lead, ok := s.tricks.LeadSuit(); ok {
		leadSuit = &lead
	}

	return State{
		GameID:         s.id,
		ShortCode:      s.shortCode,
		Mode:           s.cfg.Mode,
		Seats:          s.cfg.Seats,
		MinBid:         s.cfg.MinBid,
		Phase:          s.phase,
		Players:        players,
		Dealer:         s.dealer,
		Leader:         s.leader,
		Turn:           s.turn,
		Trump:          trump,
		Kitty:          append([]deck.Card(nil), s.kitty...),
		HandSizes:      handSizes,
		Bids:           bids,
		CurrentHighest: copyIntPtr(s.bidding.highest),
		BidWinner:      copyIntPtr(s.bidding.winner),
		BidValue:       copyIntPtr(s.bidding.value),
		PointsBySeat:   copyPoints(s.pointsBySeat),
		CurrentTrick:   s.tricks.Current(),
		LeadSuit:       leadSuit,
		LastTrick:      s.tricks.Last(),
		RoundsHistory:  append([]RoundRecord(nil), s.history...),
	}
}
