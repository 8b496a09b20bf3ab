package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Mode selects the deck configuration: "28" plays a single 32-card deck,
// "56" merges two decks into 64 unique cards.
type Mode string

const (
	Mode28 Mode = "28"
	Mode56 Mode = "56"
)

// Valid reports whether the mode is one of the supported game modes.
func (m Mode) Valid() bool {
	return m == Mode28 || m == Mode56
}

// MaxBid returns the highest legal bid for the mode, which equals the total
// points in play.
func (m Mode) MaxBid() int {
	if m == Mode56 {
		return 56
	}
	return 28
}

// Decks returns how many physical decks the mode merges.
func (m Mode) Decks() int {
	if m == Mode56 {
		return 2
	}
	return 1
}

// New builds an ordered deck for the mode. Cards carry UIDs so duplicate
// rank/suit pairs from merged decks stay distinguishable.
func New(mode Mode) []Card {
	decks := mode.Decks()
	cards := make([]Card, 0, decks*len(Suits())*len(Ranks()))
	for d := 1; d <= decks; d++ {
		for _, s := range Suits() {
			for _, r := range Ranks() {
				cards = append(cards, NewCard(s, r, d))
			}
		}
	}
	return cards
}

// Shuffle returns a shuffled copy of the deck, leaving the input untouched.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Deal partitions the deck round-robin into per-seat hands plus a leftover
// kitty when the deck size isn't divisible by the seat count.
func Deal(cards []Card, seats int) (hands [][]Card, kitty []Card, err error) {
	if seats <= 0 {
		return nil, nil, fmt.Errorf("seats must be > 0, got %d", seats)
	}
	handSize := len(cards) / seats
	hands = make([][]Card, seats)
	for s := range hands {
		hands[s] = make([]Card, 0, handSize)
	}
	for i := 0; i < handSize*seats; i++ {
		hands[i%seats] = append(hands[i%seats], cards[i])
	}
	kitty = append([]Card(nil), cards[handSize*seats:]...)
	return hands, kitty, nil
}
