package game

import "github.com/jerynmathew/thurup/internal/deck"

// Strategy decides actions for an automated seat. Implementations receive
// copies of the hand and may not mutate session state; the session applies
// the returned choice through the normal validated entry points.
type Strategy interface {
	// ChooseBid returns a numeric bid or BidPass. currentHighest is nil
	// when nobody has bid yet.
	ChooseBid(hand []deck.Card, minBid, maxBid int, currentHighest *int) int

	// ChooseTrump picks the trump suit after winning the bid.
	ChooseTrump(hand []deck.Card) deck.Suit

	// ChooseCard picks a legal card. leadSuit is nil when leading; trump is
	// nil while hidden.
	ChooseCard(hand []deck.Card, leadSuit, trump *deck.Suit) deck.Card
}

// CommandType names the action a Command carries.
type CommandType string

const (
	CmdPlaceBid    CommandType = "place_bid"
	CmdChooseTrump CommandType = "choose_trump"
	CmdPlayCard    CommandType = "play_card"
)

// Command is a suggested action for one seat, ready to feed back through
// the session's public methods.
type Command struct {
	Type   CommandType
	Seat   int
	Value  *int
	Suit   deck.Suit
	CardID string
}

// Suggest asks the strategy what the seat should do right now. It returns
// nil when the seat has no action available (not its turn, already acted,
// or the phase offers it nothing).
func (s *Session) Suggest(seat int, strat Strategy) *Command {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if seat < 0 || seat >= s.cfg.Seats {
		return nil
	}
	hand := append([]deck.Card(nil), s.hands[seat]...)

	switch s.phase {
	case PhaseBidding:
		if seat != s.turn {
			return nil
		}
		if s.bidding.bids[seat] != nil {
			return nil
		}
		v := strat.ChooseBid(hand, s.cfg.MinBid, s.cfg.Mode.MaxBid(), copyIntPtr(s.bidding.highest))
		return &Command{Type: CmdPlaceBid, Seat: seat, Value: &v}

	case PhaseChooseTrump:
		winner, ok := s.bidding.Winner()
		if !ok || seat != winner {
			return nil
		}
		return &Command{Type: CmdChooseTrump, Seat: seat, Suit: strat.ChooseTrump(hand)}

	case PhasePlay:
		if seat != s.turn || len(hand) == 0 {
			return nil
		}
		var lead *deck.Suit
		if l, ok := s.tricks.LeadSuit(); ok {
			lead = &l
		}
		var trump *deck.Suit
		if !s.trumpHidden {
			trump = copySuitPtr(s.trump)
		}
		card := strat.ChooseCard(hand, lead, trump)
		return &Command{Type: CmdPlayCard, Seat: seat, CardID: card.UID}
	}
	return nil
}
