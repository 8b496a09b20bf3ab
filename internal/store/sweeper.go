package store

import (
	"context"
	"time"

	"github.com/coder/quartz"
)

// Retention windows per game state. Lobbies that never fill go first,
// abandoned mid-game tables next, finished games last.
const (
	lobbyTTL     = 1 * time.Hour
	activeTTL    = 2 * time.Hour
	completedTTL = 24 * time.Hour
)

// Sweeper periodically deletes stale games.
type Sweeper struct {
	store    *Store
	clock    quartz.Clock
	interval time.Duration
}

// NewSweeper creates a sweeper over the store. The clock is injectable so
// tests can drive it deterministically.
func NewSweeper(store *Store, clock quartz.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, clock: clock, interval: interval}
}

// Run sweeps on the configured interval until the context is canceled.
func (sw *Sweeper) Run(ctx context.Context) error {
	waiter := sw.clock.TickerFunc(ctx, sw.interval, func() error {
		if n, err := sw.SweepOnce(ctx); err != nil {
			sw.store.logger.Error("sweep failed", "err", err)
		} else if n > 0 {
			sw.store.logger.Info("swept stale games", "deleted", n)
		}
		return nil
	}, "store.sweeper")
	return waiter.Wait()
}

// SweepOnce deletes every game past its retention window and returns how
// many rows went away.
func (sw *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	now := sw.clock.Now()
	res, err := sw.store.db.ExecContext(ctx, `
		DELETE FROM games WHERE
			(phase = 'lobby' AND updated_at < ?) OR
			(phase IN ('dealing', 'bidding', 'choose_trump', 'play') AND updated_at < ?) OR
			(phase IN ('scoring', 'round_end') AND updated_at < ?)`,
		now.Add(-lobbyTTL).Unix(),
		now.Add(-activeTTL).Unix(),
		now.Add(-completedTTL).Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
