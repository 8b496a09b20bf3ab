// Package bot provides built-in strategies for automated seats. Strategies
// only ever see copies of game state and answer through the session's
// validated entry points, so a misbehaving strategy cannot corrupt a game.
package bot

import (
	rand "math/rand/v2"
	"time"

	"github.com/jerynmathew/thurup/internal/deck"
	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/randutil"
)

// passProbability is how often the easy bot declines to outbid.
const passProbability = 0.45

// EasyStrategy is a cheap heuristic opponent: it passes often, bids low,
// names its longest suit as trump, and plays the first legal card that
// keeps points when winning looks possible.
type EasyStrategy struct {
	rng *rand.Rand
}

// NewEasyStrategy seeds the bot's randomness; seed 0 selects a time-based
// seed.
func NewEasyStrategy(seed int64) *EasyStrategy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &EasyStrategy{rng: randutil.New(seed)}
}

// ChooseBid passes with fixed probability, otherwise bids the lowest legal
// improvement over the current highest.
func (e *EasyStrategy) ChooseBid(hand []deck.Card, minBid, maxBid int, currentHighest *int) int {
	if e.rng.Float64() < passProbability {
		return game.BidPass
	}
	low := minBid
	if currentHighest != nil && *currentHighest+1 > low {
		low = *currentHighest + 1
	}
	if low > maxBid {
		return game.BidPass
	}
	// Lean low: pick from the bottom quarter of the legal range.
	span := (maxBid-low)/4 + 1
	return low + e.rng.IntN(span)
}

// ChooseTrump names the longest suit in hand, breaking ties toward the suit
// holding more points.
func (e *EasyStrategy) ChooseTrump(hand []deck.Card) deck.Suit {
	var counts, points [4]int
	for _, c := range hand {
		counts[c.Suit]++
		points[c.Suit] += deck.Points(c.Rank)
	}
	best := deck.Spades
	for s := deck.Spades; s <= deck.Clubs; s++ {
		if counts[s] > counts[best] || (counts[s] == counts[best] && points[s] > points[best]) {
			best = s
		}
	}
	return best
}

// ChooseCard follows low when it must follow, trumps low when void and
// trump is visible, and otherwise leads or discards its highest-point card.
func (e *EasyStrategy) ChooseCard(hand []deck.Card, leadSuit, trump *deck.Suit) deck.Card {
	if len(hand) == 1 {
		return hand[0]
	}

	if leadSuit != nil {
		if follow := suitCards(hand, *leadSuit); len(follow) > 0 {
			return lowest(follow)
		}
		if trump != nil {
			if trumps := suitCards(hand, *trump); len(trumps) > 0 {
				return lowest(trumps)
			}
		}
		// Void everywhere useful: shed the cheapest card.
		return cheapest(hand)
	}

	// Leading: put pressure on with the biggest card.
	return highest(hand)
}

func suitCards(hand []deck.Card, suit deck.Suit) []deck.Card {
	var out []deck.Card
	for _, c := range hand {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

func lowest(cards []deck.Card) deck.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if deck.Strength(c.Rank) < deck.Strength(best.Rank) {
			best = c
		}
	}
	return best
}

func highest(cards []deck.Card) deck.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if deck.Strength(c.Rank) > deck.Strength(best.Rank) {
			best = c
		}
	}
	return best
}

func cheapest(cards []deck.Card) deck.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if deck.Points(c.Rank) < deck.Points(best.Rank) ||
			(deck.Points(c.Rank) == deck.Points(best.Rank) && deck.Strength(c.Rank) < deck.Strength(best.Rank)) {
			best = c
		}
	}
	return best
}
