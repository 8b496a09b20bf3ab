package deck

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Suits returns all four suits in declaration order.
func Suits() []Suit {
	return []Suit{Spades, Hearts, Diamonds, Clubs}
}

// ParseSuit converts a suit symbol back to its Suit value.
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "♠":
		return Spades, nil
	case "♥":
		return Hearts, nil
	case "♦":
		return Diamonds, nil
	case "♣":
		return Clubs, nil
	default:
		return 0, fmt.Errorf("invalid suit %q (must be ♠, ♥, ♦, or ♣)", s)
	}
}

// MarshalJSON encodes the suit as its symbol so wire and snapshot payloads
// stay readable.
func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a suit symbol.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSuit(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank represents a card rank
type Rank int

const (
	Seven Rank = iota
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Ranks returns all eight ranks in declaration order.
func Ranks() []Rank {
	return []Rank{Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
}

// ParseRank converts a rank string back to its Rank value.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	default:
		return 0, fmt.Errorf("invalid rank %q", s)
	}
}

// MarshalJSON encodes the rank as its display string.
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a rank string.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseRank(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card represents a playing card. UID disambiguates duplicate rank/suit pairs
// when two decks are merged for 56-mode (e.g. "A♠#1" vs "A♠#2").
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	UID  string `json:"id"`
}

// NewCard creates a card belonging to the given copy of the deck (1-based).
func NewCard(suit Suit, rank Rank, deckNo int) Card {
	return Card{
		Suit: suit,
		Rank: rank,
		UID:  fmt.Sprintf("%s%s#%d", rank, suit, deckNo),
	}
}

// String returns the readable representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Points returns the point value of the card: J=3, 9=2, A=1, 10=1, rest 0.
func (c Card) Points() int {
	return Points(c.Rank)
}

// Points returns the point value for a rank.
func Points(r Rank) int {
	switch r {
	case Jack:
		return 3
	case Nine:
		return 2
	case Ace, Ten:
		return 1
	default:
		return 0
	}
}
