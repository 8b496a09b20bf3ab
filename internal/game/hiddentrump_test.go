package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jerynmathew/thurup/internal/deck"
)

func suitPtr(s deck.Suit) *deck.Suit { return &s }

func seatPtr(s int) *int { return &s }

func TestShouldRevealTrump(t *testing.T) {
	spades := suitPtr(deck.Spades)
	heartsLead := []deck.PlayedCard{{Seat: 0, Card: card(deck.Hearts, deck.King)}}

	tests := []struct {
		name   string
		check  revealCheck
		reveal bool
	}{
		{
			name: "already visible never re-reveals",
			check: revealCheck{
				hidden: false,
				mode:   RevealOpenImmediately,
				played: card(deck.Spades, deck.Jack),
				trump:  spades,
			},
			reveal: false,
		},
		{
			name: "open immediately reveals on any play",
			check: revealCheck{
				hidden: true,
				mode:   RevealOpenImmediately,
				played: card(deck.Hearts, deck.Seven),
				trump:  spades,
			},
			reveal: true,
		},
		{
			name: "first trump play reveals when trump suit hits the table",
			check: revealCheck{
				hidden: true,
				mode:   RevealOnFirstTrumpPlay,
				played: card(deck.Spades, deck.Seven),
				trump:  spades,
				seat:   2,
			},
			reveal: true,
		},
		{
			name: "first trump play ignores off-suit cards",
			check: revealCheck{
				hidden: true,
				mode:   RevealOnFirstTrumpPlay,
				played: card(deck.Diamonds, deck.Jack),
				trump:  spades,
			},
			reveal: false,
		},
		{
			name: "nonfollow reveals only when the player could follow",
			check: revealCheck{
				hidden: true,
				mode:   RevealOnFirstNonfollow,
				played: card(deck.Clubs, deck.Seven),
				trump:  spades,
				seat:   1,
				trick:  heartsLead,
				hand: []deck.Card{
					card(deck.Hearts, deck.Queen),
					card(deck.Clubs, deck.Seven),
				},
			},
			reveal: true,
		},
		{
			name: "genuine void does not reveal",
			check: revealCheck{
				hidden: true,
				mode:   RevealOnFirstNonfollow,
				played: card(deck.Clubs, deck.Seven),
				trump:  spades,
				seat:   1,
				trick:  heartsLead,
				hand:   []deck.Card{card(deck.Clubs, deck.Seven)},
			},
			reveal: false,
		},
		{
			name: "nonfollow when leading cannot trigger",
			check: revealCheck{
				hidden: true,
				mode:   RevealOnFirstNonfollow,
				played: card(deck.Clubs, deck.Seven),
				trump:  spades,
				hand:   []deck.Card{card(deck.Clubs, deck.Seven)},
			},
			reveal: false,
		},
		{
			name: "bidder nonfollow fires for the trump owner",
			check: revealCheck{
				hidden:     true,
				mode:       RevealOnBidderNonfollow,
				played:     card(deck.Clubs, deck.Seven),
				trump:      spades,
				trumpOwner: seatPtr(1),
				seat:       1,
				trick:      heartsLead,
				hand: []deck.Card{
					card(deck.Hearts, deck.Queen),
					card(deck.Clubs, deck.Seven),
				},
			},
			reveal: true,
		},
		{
			name: "bidder nonfollow ignores other seats",
			check: revealCheck{
				hidden:     true,
				mode:       RevealOnBidderNonfollow,
				played:     card(deck.Clubs, deck.Seven),
				trump:      spades,
				trumpOwner: seatPtr(1),
				seat:       3,
				trick:      heartsLead,
				hand: []deck.Card{
					card(deck.Hearts, deck.Queen),
					card(deck.Clubs, deck.Seven),
				},
			},
			reveal: false,
		},
		{
			name: "no trump chosen yet",
			check: revealCheck{
				hidden: true,
				mode:   RevealOpenImmediately,
				played: card(deck.Spades, deck.Jack),
			},
			reveal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reveal, _ := shouldRevealTrump(tt.check)
			assert.Equal(t, tt.reveal, reveal)
		})
	}
}

func TestValidateManualReveal(t *testing.T) {
	heartsLead := []deck.PlayedCard{{Seat: 0, Card: card(deck.Hearts, deck.King)}}
	voidHand := []deck.Card{card(deck.Clubs, deck.Seven)}
	followHand := []deck.Card{card(deck.Hearts, deck.Queen)}

	tests := []struct {
		name    string
		hidden  bool
		seat    int
		turn    int
		trick   []deck.PlayedCard
		hand    []deck.Card
		ok      bool
		message string
	}{
		{
			name: "legal reveal when void and not leading",
			hidden: true, seat: 1, turn: 1,
			trick: heartsLead, hand: voidHand,
			ok: true,
		},
		{
			name:   "already revealed",
			hidden: false, seat: 1, turn: 1,
			trick: heartsLead, hand: voidHand,
			ok: false, message: "Trump already revealed",
		},
		{
			name:   "out of turn",
			hidden: true, seat: 2, turn: 1,
			trick: heartsLead, hand: voidHand,
			ok: false, message: "Not your turn",
		},
		{
			name:   "leading the trick",
			hidden: true, seat: 1, turn: 1,
			trick: nil, hand: voidHand,
			ok: false, message: "Cannot reveal trump when leading",
		},
		{
			name:   "able to follow suit",
			hidden: true, seat: 1, turn: 1,
			trick: heartsLead, hand: followHand,
			ok: false, message: "You can follow suit, cannot reveal trump",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := validateManualReveal(tt.hidden, tt.seat, tt.turn, tt.trick, tt.hand)
			assert.Equal(t, tt.ok, ok)
			if tt.message != "" {
				assert.Equal(t, tt.message, msg)
			}
		})
	}
}
