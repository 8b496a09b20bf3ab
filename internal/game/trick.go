package game

import (
	"fmt"

	"github.com/jerynmathew/thurup/internal/deck"
)

// CompletedTrick is a resolved trick with its winner and point value.
type CompletedTrick struct {
	Winner int               `json:"winner"`
	Cards  []deck.PlayedCard `json:"cards"`
	Points int               `json:"points"`
}

// TrickManager owns the in-progress trick and the history of completed
// tricks for one round.
type TrickManager struct {
	current  []deck.PlayedCard
	last     *CompletedTrick
	captured []CompletedTrick
}

// NewTrickManager returns an empty trick state.
func NewTrickManager() *TrickManager {
	return &TrickManager{}
}

// Reset clears all trick state for a new round.
func (tm *TrickManager) Reset() {
	tm.current = nil
	tm.last = nil
	tm.captured = nil
}

// Add appends a card to the current trick in play order.
func (tm *TrickManager) Add(seat int, card deck.Card) {
	tm.current = append(tm.current, deck.PlayedCard{Seat: seat, Card: card})
}

// IsComplete reports whether every seat has contributed a card.
func (tm *TrickManager) IsComplete(seats int) bool {
	return len(tm.current) >= seats
}

// LeadSuit returns the suit of the first card played, if a trick is underway.
func (tm *TrickManager) LeadSuit() (deck.Suit, bool) {
	if len(tm.current) == 0 {
		return 0, false
	}
	return tm.current[0].Card.Suit, true
}

// Current returns a copy of the in-progress trick.
func (tm *TrickManager) Current() []deck.PlayedCard {
	return append([]deck.PlayedCard(nil), tm.current...)
}

// Last returns the most recently completed trick, if any.
func (tm *TrickManager) Last() *CompletedTrick {
	return tm.last
}

// Captured returns the completed tricks of the round in order.
func (tm *TrickManager) Captured() []CompletedTrick {
	return append([]CompletedTrick(nil), tm.captured...)
}

// Complete resolves the current trick: determines the winner using only the
// VISIBLE trump (callers pass nil while trump is hidden so it cannot
// influence resolution), credits the trick points to the winner, archives
// the trick, and clears the in-progress state. Completing an empty trick is
// a caller contract violation.
func (tm *TrickManager) Complete(trump *deck.Suit, pointsBySeat map[int]int) (winner, points int, err error) {
	if len(tm.current) == 0 {
		return 0, 0, fmt.Errorf("no trick to complete")
	}
	winner, err = deck.TrickWinner(tm.current, trump)
	if err != nil {
		return 0, 0, err
	}
	points = deck.TrickPoints(tm.current)
	pointsBySeat[winner] += points

	done := CompletedTrick{
		Winner: winner,
		Cards:  append([]deck.PlayedCard(nil), tm.current...),
		Points: points,
	}
	tm.last = &done
	tm.captured = append(tm.captured, done)
	tm.current = nil
	return winner, points, nil
}

// Restore replaces the trick state wholesale, used when reloading a
// persisted session.
func (tm *TrickManager) Restore(current []deck.PlayedCard, last *CompletedTrick, captured []CompletedTrick) {
	tm.current = append([]deck.PlayedCard(nil), current...)
	tm.last = last
	tm.captured = append([]CompletedTrick(nil), captured...)
}
