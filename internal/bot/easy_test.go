package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerynmathew/thurup/internal/deck"
	"github.com/jerynmathew/thurup/internal/game"
)

var _ game.Strategy = (*EasyStrategy)(nil)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func card(suit deck.Suit, rank deck.Rank) deck.Card {
	return deck.NewCard(suit, rank, 1)
}

func TestChooseBidStaysLegal(t *testing.T) {
	e := NewEasyStrategy(7)
	highest := 20

	for i := 0; i < 500; i++ {
		bid := e.ChooseBid(nil, 14, 28, &highest)
		if bid == game.BidPass {
			continue
		}
		assert.GreaterOrEqual(t, bid, 21, "numeric bids must beat the current highest")
		assert.LessOrEqual(t, bid, 28)
	}
}

func TestChooseBidPassesWhenOutbid(t *testing.T) {
	e := NewEasyStrategy(7)
	highest := 28
	for i := 0; i < 100; i++ {
		assert.Equal(t, game.BidPass, e.ChooseBid(nil, 14, 28, &highest))
	}
}

func TestChooseBidEventuallyBidsAndPasses(t *testing.T) {
	e := NewEasyStrategy(11)
	var bids, passes int
	for i := 0; i < 200; i++ {
		if e.ChooseBid(nil, 14, 28, nil) == game.BidPass {
			passes++
		} else {
			bids++
		}
	}
	assert.Positive(t, bids)
	assert.Positive(t, passes)
}

func TestChooseTrumpPrefersLongestSuit(t *testing.T) {
	e := NewEasyStrategy(1)
	hand := []deck.Card{
		card(deck.Hearts, deck.Seven),
		card(deck.Hearts, deck.Eight),
		card(deck.Hearts, deck.Queen),
		card(deck.Spades, deck.Jack),
		card(deck.Clubs, deck.Nine),
	}
	assert.Equal(t, deck.Hearts, e.ChooseTrump(hand))
}

func TestChooseTrumpBreaksTiesOnPoints(t *testing.T) {
	e := NewEasyStrategy(1)
	hand := []deck.Card{
		card(deck.Spades, deck.Seven),
		card(deck.Spades, deck.Eight),
		card(deck.Diamonds, deck.Jack),
		card(deck.Diamonds, deck.Nine),
	}
	assert.Equal(t, deck.Diamonds, e.ChooseTrump(hand))
}

func TestChooseCardFollowsLow(t *testing.T) {
	e := NewEasyStrategy(1)
	lead := deck.Hearts
	hand := []deck.Card{
		card(deck.Hearts, deck.Jack),
		card(deck.Hearts, deck.Seven),
		card(deck.Spades, deck.Ace),
	}
	got := e.ChooseCard(hand, &lead, nil)
	assert.Equal(t, "7♥#1", got.UID, "weakest follower is spent first")
}

func TestChooseCardTrumpsLowWhenVoid(t *testing.T) {
	e := NewEasyStrategy(1)
	lead := deck.Hearts
	trump := deck.Clubs
	hand := []deck.Card{
		card(deck.Clubs, deck.Nine),
		card(deck.Clubs, deck.Seven),
		card(deck.Diamonds, deck.Ace),
	}
	got := e.ChooseCard(hand, &lead, &trump)
	assert.Equal(t, "7♣#1", got.UID)
}

func TestChooseCardDiscardsCheapWhenHopeless(t *testing.T) {
	e := NewEasyStrategy(1)
	lead := deck.Hearts
	hand := []deck.Card{
		card(deck.Diamonds, deck.Jack),
		card(deck.Diamonds, deck.Eight),
		card(deck.Spades, deck.Nine),
	}
	got := e.ChooseCard(hand, &lead, nil)
	assert.Equal(t, "8♦#1", got.UID, "point cards are kept back")
}

func TestChooseCardLeadsHigh(t *testing.T) {
	e := NewEasyStrategy(1)
	hand := []deck.Card{
		card(deck.Diamonds, deck.Seven),
		card(deck.Diamonds, deck.Jack),
	}
	got := e.ChooseCard(hand, nil, nil)
	assert.Equal(t, "J♦#1", got.UID)
}

// The easy bot should be able to drive an entire seeded game through the
// session without ever producing an illegal action.
func TestEasyStrategyCompletesRounds(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Seed = 42
	cfg.RevealMode = game.RevealOpenImmediately
	s, err := game.NewSession("g-bots", "", cfg, testLogger())
	require.NoError(t, err)
	strat := NewEasyStrategy(42)

	for i := 0; i < 4; i++ {
		_, err := s.AddPlayer(game.PlayerInfo{PlayerID: "b", Name: "bot", IsBot: true})
		require.NoError(t, err)
	}
	require.NoError(t, s.StartRound(0))

	for steps := 0; steps < 400 && s.Phase() != game.PhaseScoring; steps++ {
		var cmd *game.Command
		for seat := 0; seat < 4; seat++ {
			if cmd = s.Suggest(seat, strat); cmd != nil {
				break
			}
		}
		require.NotNil(t, cmd, "some seat must always have an action before scoring")

		switch cmd.Type {
		case game.CmdPlaceBid:
			ok, msg := s.PlaceBid(cmd.Seat, cmd.Value)
			require.True(t, ok, msg)
		case game.CmdChooseTrump:
			ok, msg := s.ChooseTrump(cmd.Seat, cmd.Suit)
			require.True(t, ok, msg)
		case game.CmdPlayCard:
			ok, msg := s.PlayCard(cmd.Seat, cmd.CardID)
			require.True(t, ok, msg)
		}
	}

	require.Equal(t, game.PhaseScoring, s.Phase())
	scores := s.ComputeScores()
	assert.Equal(t, 28, scores.TeamPoints[0]+scores.TeamPoints[1])
}
