package server

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/randutil"
	"github.com/jerynmathew/thurup/internal/store"
)

// stateRecorder counts broadcasts per game.
type stateRecorder struct {
	mu     sync.Mutex
	states []game.State
}

func (r *stateRecorder) BroadcastState(gameID string, state game.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *stateRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func testDefaults() GameDefaults {
	d := DefaultServerConfig().Game
	d.BotDelayMs = -1 // negative disables the pacing pause in tests
	return d
}

func newTestService(t *testing.T, st *store.Store) (*GameService, *stateRecorder) {
	t.Helper()
	svc := NewGameService(NewRegistry(randutil.New(1)), st, testDefaults(), quartz.NewReal(), testLogger())
	rec := &stateRecorder{}
	svc.SetBroadcaster(rec)
	return svc, rec
}

func TestServiceCreateGame(t *testing.T) {
	svc, _ := newTestService(t, nil)

	s, err := svc.CreateGame(context.Background(), CreateGameRequest{Bots: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.NotEmpty(t, s.ShortCode())
	assert.Equal(t, 2, s.SeatedCount())
	assert.Equal(t, game.PhaseLobby, s.Phase())

	resolved, ok := svc.Resolve(s.ShortCode())
	require.True(t, ok)
	assert.Same(t, s, resolved)

	_, err = svc.CreateGame(context.Background(), CreateGameRequest{Mode: "32"})
	assert.Error(t, err)
}

func TestServiceJoinAutoStartsWhenFull(t *testing.T) {
	svc, rec := newTestService(t, nil)

	s, err := svc.CreateGame(context.Background(), CreateGameRequest{})
	require.NoError(t, err)

	names := []string{"alice", "bob", "carol", "dave"}
	for i, name := range names {
		joined, seat, err := svc.Join(context.Background(), s.ShortCode(), "", name)
		require.NoError(t, err)
		assert.Same(t, s, joined)
		assert.Equal(t, i, seat)
	}

	assert.Equal(t, game.PhaseBidding, s.Phase(), "full table starts automatically")
	assert.GreaterOrEqual(t, rec.count(), 4, "every join broadcasts")

	_, _, err = svc.Join(context.Background(), s.ID(), "", "eve")
	require.Error(t, err, "full game rejects further joins")
}

func TestServiceBotsPlayWholeRound(t *testing.T) {
	svc, rec := newTestService(t, nil)

	s, err := svc.CreateGame(context.Background(), CreateGameRequest{Bots: 4})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background(), s.ID(), 0))

	require.Eventually(t, func() bool {
		return s.Phase() == game.PhaseScoring
	}, 10*time.Second, 10*time.Millisecond, "bots should drive the round to scoring")

	scores := s.ComputeScores()
	assert.Equal(t, 28, scores.TeamPoints[0]+scores.TeamPoints[1])
	assert.Greater(t, rec.count(), 30, "every bot action broadcasts")

	// The next round kicks the bots straight back into action.
	require.NoError(t, svc.NextRound(context.Background(), s.ID()))
	require.Eventually(t, func() bool {
		return s.Phase() == game.PhaseScoring
	}, 10*time.Second, 10*time.Millisecond)
	assert.Len(t, s.PublicState().RoundsHistory, 2)
}

func TestServiceApplyRejectsUnknownAction(t *testing.T) {
	svc, _ := newTestService(t, nil)
	s, err := svc.CreateGame(context.Background(), CreateGameRequest{})
	require.NoError(t, err)

	ok, msg := svc.Apply(context.Background(), s, &game.Command{Type: "fold", Seat: 0})
	assert.False(t, ok)
	assert.Contains(t, msg, "Unknown action")
}

func TestServicePersistsAndRestores(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "thurup.db")
	st, err := store.Open(dbPath, testLogger())
	require.NoError(t, err)
	defer st.Close()

	svc, _ := newTestService(t, st)
	s, err := svc.CreateGame(context.Background(), CreateGameRequest{})
	require.NoError(t, err)
	_, _, err = svc.Join(context.Background(), s.ID(), "", "alice")
	require.NoError(t, err)

	// A second service over the same store sees the game after a restart.
	svc2, _ := newTestService(t, st)
	require.NoError(t, svc2.RestoreAll(context.Background()))
	restored, ok := svc2.Resolve(s.ID())
	require.True(t, ok)
	assert.Equal(t, 1, restored.SeatedCount())
	assert.Equal(t, s.ShortCode(), restored.ShortCode())
}

func TestServiceSingleRunnerPerGame(t *testing.T) {
	mock := quartz.NewMock(t)
	defaults := DefaultServerConfig().Game
	defaults.BotDelayMs = 60_000 // parks the runner in its pacing timer
	svc := NewGameService(NewRegistry(randutil.New(1)), nil, defaults, mock, testLogger())
	defer svc.Shutdown()
	svc.SetBroadcaster(&stateRecorder{})

	s, err := svc.CreateGame(context.Background(), CreateGameRequest{Bots: 4})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background(), s.ID(), 0))

	// Rapid accepted actions re-trigger the runner; while the first runner
	// sits on its delay timer none of them may stack a second one.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.kickBots(context.Background(), s)
		}()
	}
	wg.Wait()

	svc.mu.Lock()
	running := len(svc.runners)
	svc.mu.Unlock()
	assert.Equal(t, 1, running)

	// Cancelling the service unparks the runner and it unregisters itself.
	svc.Shutdown()
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.runners) == 0
	}, time.Second, 5*time.Millisecond)
}
