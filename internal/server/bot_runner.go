package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/jerynmathew/thurup/internal/game"
)

// maxBotCycles caps one runner activation. A fully automated table plays a
// whole round in well under this; hitting the cap means something is
// suggesting actions that never apply.
const maxBotCycles = 200

// botRunner drives every bot seat of one game until no bot has an action
// left. At most one runner is active per game; the service guarantees that.
type botRunner struct {
	svc     *GameService
	session *game.Session
	strat   game.Strategy
	clock   quartz.Clock
	delay   time.Duration
	logger  *log.Logger
}

func newBotRunner(svc *GameService, s *game.Session, strat game.Strategy, clock quartz.Clock, delay time.Duration, logger *log.Logger) *botRunner {
	return &botRunner{
		svc:     svc,
		session: s,
		strat:   strat,
		clock:   clock,
		delay:   delay,
		logger:  logger.WithPrefix("bots").With("game", s.ID()),
	}
}

// run applies suggested bot actions, pausing between them so human
// spectators can follow along. Returns when no bot seat has a move, the
// cycle cap trips, or the context ends.
func (r *botRunner) run(ctx context.Context) {
	for cycle := 0; cycle < maxBotCycles; cycle++ {
		cmd := r.nextCommand()
		if cmd == nil {
			return
		}
		if r.delay > 0 && !r.pause(ctx) {
			return
		}

		ok, msg := r.svc.dispatch(r.session, cmd)
		if !ok {
			// A rejected suggestion means a human acted in the gap. Re-poll.
			r.logger.Debug("bot action rejected", "seat", cmd.Seat, "type", cmd.Type, "msg", msg)
			continue
		}
		r.svc.persist(ctx, r.session)
		r.svc.broadcast(r.session)
		r.logger.Debug("bot acted", "seat", cmd.Seat, "type", cmd.Type, "msg", msg)
	}
	r.logger.Warn("bot runner hit cycle cap", "cap", maxBotCycles)
}

// nextCommand polls bot seats for the first available action.
func (r *botRunner) nextCommand() *game.Command {
	for seat := 0; seat < r.session.Seats(); seat++ {
		if !r.session.IsBotSeat(seat) {
			continue
		}
		if cmd := r.session.Suggest(seat, r.strat); cmd != nil {
			return cmd
		}
	}
	return nil
}

func (r *botRunner) pause(ctx context.Context) bool {
	timer := r.clock.NewTimer(r.delay, "server.botRunner")
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}
