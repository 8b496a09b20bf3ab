package game

// Teams partition seats by parity: even seats are team 0, odd seats team 1.

// BidOutcome reports whether the bid-winning team met its bid.
type BidOutcome struct {
	BidWinner   int  `json:"bid_winner"`
	BidValue    int  `json:"bid_value"`
	WinningTeam int  `json:"winning_team"`
	Success     bool `json:"success"`
}

// Scores holds per-team point totals and, when a bid exists, its outcome.
type Scores struct {
	TeamPoints [2]int      `json:"team_points"`
	BidOutcome *BidOutcome `json:"bid_outcome,omitempty"`
}

// TeamFor returns the team index for a seat.
func TeamFor(seat int) int {
	return seat % 2
}

// computeScores sums per-seat points into team totals and evaluates the bid,
// if one was won. Pure over its inputs.
func computeScores(pointsBySeat map[int]int, bidWinner, bidValue *int) Scores {
	var s Scores
	for seat, pts := range pointsBySeat {
		s.TeamPoints[TeamFor(seat)] += pts
	}
	if bidWinner != nil && bidValue != nil {
		team := TeamFor(*bidWinner)
		success := s.TeamPoints[team] >= *bidValue
		winning := team
		if !success {
			// A failed bid hands the round to the defenders.
			winning = 1 - team
		}
		s.BidOutcome = &BidOutcome{
			BidWinner:   *bidWinner,
			BidValue:    *bidValue,
			WinningTeam: winning,
			Success:     success,
		}
	}
	return s
}
