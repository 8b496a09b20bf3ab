package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(suit Suit, rank Rank) Card {
	return NewCard(suit, rank, 1)
}

func TestStrengthOrdering(t *testing.T) {
	t.Parallel()

	// Low to high: 7, 8, Q, K, 10, A, 9, J.
	ordered := []Rank{Seven, Eight, Queen, King, Ten, Ace, Nine, Jack}
	for i := 1; i < len(ordered); i++ {
		if Strength(ordered[i-1]) >= Strength(ordered[i]) {
			t.Errorf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
}

func TestTrickWinnerTrumpCandidates(t *testing.T) {
	t.Parallel()

	// J♠ beats 9♠ among trump candidates; the off-suit A♦ never competes.
	trick := []PlayedCard{
		{Seat: 0, Card: card(Spades, Jack)},
		{Seat: 1, Card: card(Hearts, King)},
		{Seat: 2, Card: card(Spades, Nine)},
		{Seat: 3, Card: card(Diamonds, Ace)},
	}
	trump := Spades
	winner, err := TrickWinner(trick, &trump)
	require.NoError(t, err)
	assert.Equal(t, 0, winner)
}

func TestTrickWinnerLeadSuitNineBeatsAce(t *testing.T) {
	t.Parallel()

	// With no trump in play, 9 of the lead suit beats the Ace (J>9>A>10>K>Q>8>7).
	trick := []PlayedCard{
		{Seat: 0, Card: card(Hearts, King)},
		{Seat: 1, Card: card(Hearts, Ace)},
		{Seat: 2, Card: card(Hearts, Nine)},
		{Seat: 3, Card: card(Diamonds, Ace)},
	}
	winner, err := TrickWinner(trick, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, winner)
}

func TestTrickWinnerHiddenTrumpIgnored(t *testing.T) {
	t.Parallel()

	// While trump is hidden callers pass nil, so a would-be trump card
	// that cannot follow the lead suit never wins.
	trick := []PlayedCard{
		{Seat: 0, Card: card(Hearts, Seven)},
		{Seat: 1, Card: card(Spades, Jack)},
		{Seat: 2, Card: card(Hearts, Eight)},
		{Seat: 3, Card: card(Hearts, Queen)},
	}
	winner, err := TrickWinner(trick, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, winner)

	// Once revealed, the trump Jack takes the trick.
	trump := Spades
	winner, err = TrickWinner(trick, &trump)
	require.NoError(t, err)
	assert.Equal(t, 1, winner)
}

func TestTrickWinnerMergedDeckTieGoesToEarliest(t *testing.T) {
	t.Parallel()

	// Two decks can produce the same rank and suit twice; the first played wins.
	trick := []PlayedCard{
		{Seat: 2, Card: NewCard(Clubs, Jack, 1)},
		{Seat: 3, Card: NewCard(Clubs, Jack, 2)},
		{Seat: 0, Card: NewCard(Clubs, Seven, 1)},
		{Seat: 1, Card: NewCard(Diamonds, Ace, 1)},
	}
	winner, err := TrickWinner(trick, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, winner)
}

func TestTrickWinnerEmptyTrick(t *testing.T) {
	t.Parallel()

	_, err := TrickWinner(nil, nil)
	assert.Error(t, err)
}

func TestTrickPoints(t *testing.T) {
	t.Parallel()

	trick := []PlayedCard{
		{Seat: 0, Card: card(Spades, Jack)},  // 3
		{Seat: 1, Card: card(Spades, Nine)},  // 2
		{Seat: 2, Card: card(Spades, Ace)},   // 1
		{Seat: 3, Card: card(Spades, Seven)}, // 0
	}
	assert.Equal(t, 6, TrickPoints(trick))
}
