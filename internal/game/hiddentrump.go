package game

import (
	"fmt"

	"github.com/jerynmathew/thurup/internal/deck"
)

// Hidden-trump reveal policy. Stateless: both functions only evaluate the
// situation they are given, the session applies the outcome.

// revealCheck carries the situation of a just-played card, captured BEFORE
// the card was removed from the hand and before it joined the trick.
type revealCheck struct {
	hidden     bool
	mode       RevealMode
	played     deck.Card
	trump      *deck.Suit
	trumpOwner *int
	seat       int
	trick      []deck.PlayedCard // trick as it stood before the play
	hand       []deck.Card       // hand as it stood before the play
}

// shouldRevealTrump decides whether the play forces trump to become visible.
// The returned reason is for logging only.
func shouldRevealTrump(c revealCheck) (bool, string) {
	if !c.hidden {
		return false, ""
	}
	if c.trump == nil {
		return false, ""
	}

	switch c.mode {
	case RevealOpenImmediately:
		return true, "open_immediately_mode"

	case RevealOnFirstTrumpPlay:
		if c.played.Suit == *c.trump {
			return true, fmt.Sprintf("first_trump_played_by_seat_%d", c.seat)
		}

	case RevealOnFirstNonfollow:
		if len(c.trick) >= 1 {
			lead := c.trick[0].Card.Suit
			if handHasSuit(c.hand, lead) && c.played.Suit != lead {
				return true, fmt.Sprintf("nonfollow_by_seat_%d", c.seat)
			}
		}

	case RevealOnBidderNonfollow:
		if c.trumpOwner != nil && c.seat == *c.trumpOwner && len(c.trick) >= 1 {
			lead := c.trick[0].Card.Suit
			if handHasSuit(c.hand, lead) && c.played.Suit != lead {
				return true, fmt.Sprintf("bidder_nonfollow_seat_%d", c.seat)
			}
		}
	}
	return false, ""
}

// validateManualReveal checks the player-initiated reveal path: it must be
// the acting seat's turn, trump must still be hidden, the player must not be
// leading the trick, and they must be unable to follow the lead suit.
func validateManualReveal(hidden bool, seat, turn int, trick []deck.PlayedCard, hand []deck.Card) (bool, string) {
	if !hidden {
		return false, "Trump already revealed"
	}
	if seat != turn {
		return false, "Not your turn"
	}
	if len(trick) == 0 {
		return false, "Cannot reveal trump when leading"
	}
	lead := trick[0].Card.Suit
	if handHasSuit(hand, lead) {
		return false, "You can follow suit, cannot reveal trump"
	}
	return true, ""
}

func handHasSuit(hand []deck.Card, suit deck.Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}
