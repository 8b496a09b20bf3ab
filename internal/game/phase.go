package game

import (
	"encoding/json"
	"fmt"
)

// Phase is the session state machine position. Transitions:
// Lobby → Dealing → Bidding → ChooseTrump → Play → Scoring → (Dealing).
// An all-pass bidding round re-enters Bidding via a fresh deal instead of
// advancing.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDealing
	PhaseBidding
	PhaseChooseTrump
	PhasePlay
	PhaseScoring
	PhaseRoundEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseDealing:
		return "dealing"
	case PhaseBidding:
		return "bidding"
	case PhaseChooseTrump:
		return "choose_trump"
	case PhasePlay:
		return "play"
	case PhaseScoring:
		return "scoring"
	case PhaseRoundEnd:
		return "round_end"
	default:
		return "unknown"
	}
}

// ParsePhase converts a phase name back to its Phase value.
func ParsePhase(s string) (Phase, error) {
	for p := PhaseLobby; p <= PhaseRoundEnd; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid phase %q", s)
}

// MarshalJSON encodes the phase by name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a phase name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RevealMode selects when a hidden trump becomes visible to all players.
type RevealMode string

const (
	// RevealOnFirstNonfollow reveals when any player who holds the lead
	// suit plays a different suit.
	RevealOnFirstNonfollow RevealMode = "on_first_nonfollow"

	// RevealOnFirstTrumpPlay reveals the first time a card of the trump
	// suit is played.
	RevealOnFirstTrumpPlay RevealMode = "on_first_trump_play"

	// RevealOnBidderNonfollow reveals only when the trump chooser breaks
	// the follow-suit rule while holding the lead suit.
	RevealOnBidderNonfollow RevealMode = "on_bidder_nonfollow"

	// RevealOpenImmediately reveals on the first card played.
	RevealOpenImmediately RevealMode = "open_immediately"
)

// Valid reports whether the reveal mode is one of the four supported policies.
func (m RevealMode) Valid() bool {
	switch m {
	case RevealOnFirstNonfollow, RevealOnFirstTrumpPlay, RevealOnBidderNonfollow, RevealOpenImmediately:
		return true
	}
	return false
}
