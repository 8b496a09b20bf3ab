package game

import "fmt"

// BidPass is the recorded value for a pass. A nil entry means the seat has
// not acted yet; the two must never be conflated.
const BidPass = -1

// BiddingManager owns per-seat bid state for one round: it validates and
// records bids and tracks the running highest bid and its owner.
type BiddingManager struct {
	seats   int
	bids    []*int
	highest *int
	winner  *int
	value   *int
}

// NewBiddingManager initialises bidding state for the given seat count.
func NewBiddingManager(seats int) *BiddingManager {
	return &BiddingManager{
		seats: seats,
		bids:  make([]*int, seats),
	}
}

// Reset clears all bidding state for a new round.
func (b *BiddingManager) Reset() {
	b.bids = make([]*int, b.seats)
	b.highest = nil
	b.winner = nil
	b.value = nil
}

// Validate checks a bid against the rules without recording it.
// Order: seat-already-acted, pass-is-always-legal, range checks, then
// strict improvement over the current highest.
func (b *BiddingManager) Validate(seat int, value *int, minBid, maxBid int) (bool, string) {
	if seat < 0 || seat >= b.seats {
		return false, "Invalid seat"
	}
	if b.bids[seat] != nil {
		return false, "Seat already acted"
	}
	if value == nil || *value == BidPass {
		return true, ""
	}
	if *value < minBid {
		return false, fmt.Sprintf("Bid must be >= %d", minBid)
	}
	if *value > maxBid {
		return false, fmt.Sprintf("Bid cannot exceed %d", maxBid)
	}
	if b.highest != nil && *value <= *b.highest {
		return false, "Bid must be higher than current highest"
	}
	return true, ""
}

// Record stores a validated bid (nil or BidPass both count as a pass) and
// updates the highest bid and its owner.
func (b *BiddingManager) Record(seat int, value *int) (bool, string) {
	if seat < 0 || seat >= b.seats {
		return false, "Invalid seat"
	}
	if b.bids[seat] != nil {
		return false, "Seat already acted"
	}
	if value == nil || *value == BidPass {
		pass := BidPass
		b.bids[seat] = &pass
		return true, "Pass recorded"
	}
	v := *value
	b.bids[seat] = &v
	if b.highest == nil || v > *b.highest {
		h, w, bv := v, seat, v
		b.highest = &h
		b.winner = &w
		b.value = &bv
	}
	return true, "Bid recorded"
}

// IsComplete reports whether every seat has acted.
func (b *BiddingManager) IsComplete() bool {
	for _, v := range b.bids {
		if v == nil {
			return false
		}
	}
	return true
}

// AllPassed reports whether every seat passed, which forces a redeal.
func (b *BiddingManager) AllPassed() bool {
	for _, v := range b.bids {
		if v == nil || *v != BidPass {
			return false
		}
	}
	return true
}

// Winner returns the seat owning the highest bid, if any numeric bid exists.
func (b *BiddingManager) Winner() (int, bool) {
	if b.winner == nil {
		return 0, false
	}
	return *b.winner, true
}

// Value returns the winning bid value, if any numeric bid exists.
func (b *BiddingManager) Value() (int, bool) {
	if b.value == nil {
		return 0, false
	}
	return *b.value, true
}

// Highest returns the current highest numeric bid, if any.
func (b *BiddingManager) Highest() (int, bool) {
	if b.highest == nil {
		return 0, false
	}
	return *b.highest, true
}

// Bids returns a copy of the per-seat bid entries for serialization.
// nil means the seat has not acted; BidPass means it passed.
func (b *BiddingManager) Bids() []*int {
	out := make([]*int, b.seats)
	for i, v := range b.bids {
		if v != nil {
			c := *v
			out[i] = &c
		}
	}
	return out
}

// Restore replaces the bidding state wholesale, used when reloading a
// persisted session.
func (b *BiddingManager) Restore(bids []*int, highest, winner, value *int) {
	b.bids = make([]*int, b.seats)
	for i := 0; i < b.seats && i < len(bids); i++ {
		if bids[i] != nil {
			c := *bids[i]
			b.bids[i] = &c
		}
	}
	b.highest = copyIntPtr(highest)
	b.winner = copyIntPtr(winner)
	b.value = copyIntPtr(value)
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
