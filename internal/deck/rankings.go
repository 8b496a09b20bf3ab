package deck

import "fmt"

// Trump and non-trump suits share one ranking table, low to high:
// 7, 8, Q, K, 10, A, 9, J. Jack is the highest card and 7 the lowest,
// which departs from the usual A-high ordering. Trump status only decides
// WHICH cards compete for a trick, never how they rank against each other.
var rankOrder = [...]Rank{Seven, Eight, Queen, King, Ten, Ace, Nine, Jack}

var rankStrength = func() map[Rank]int {
	m := make(map[Rank]int, len(rankOrder))
	for i, r := range rankOrder {
		m[r] = i
	}
	return m
}()

// Strength returns the position of a rank in the shared ranking table.
// Higher is stronger.
func Strength(r Rank) int {
	return rankStrength[r]
}

// PlayedCard pairs a card with the seat that played it.
type PlayedCard struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// TrickWinner determines the winning seat for a trick played in order,
// given the visible trump suit (nil while trump is hidden or unset).
//
//   - If any played card is of the trump suit, only trump cards compete.
//   - Otherwise only cards of the lead suit compete.
//   - The competing card with the highest rank wins; on an exact tie
//     (possible only with merged decks) the earliest-played card wins.
func TrickWinner(trick []PlayedCard, trump *Suit) (int, error) {
	if len(trick) == 0 {
		return 0, fmt.Errorf("empty trick")
	}
	leadSuit := trick[0].Card.Suit

	var candidates []PlayedCard
	if trump != nil {
		for _, pc := range trick {
			if pc.Card.Suit == *trump {
				candidates = append(candidates, pc)
			}
		}
	}
	if len(candidates) == 0 {
		for _, pc := range trick {
			if pc.Card.Suit == leadSuit {
				candidates = append(candidates, pc)
			}
		}
	}

	winner := candidates[0]
	best := Strength(winner.Card.Rank)
	for _, pc := range candidates[1:] {
		if s := Strength(pc.Card.Rank); s > best {
			winner = pc
			best = s
		}
	}
	return winner.Seat, nil
}

// TrickPoints sums the point values of every card in the trick.
func TrickPoints(trick []PlayedCard) int {
	total := 0
	for _, pc := range trick {
		total += pc.Card.Points()
	}
	return total
}
