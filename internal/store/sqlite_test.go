package store

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerynmathew/thurup/internal/game"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "thurup.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestSession(t *testing.T, id, code string) *game.Session {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Seed = 1
	s, err := game.NewSession(id, code, cfg, testLogger())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := s.AddPlayer(game.PlayerInfo{PlayerID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("player %d", i)})
		require.NoError(t, err)
	}
	return s
}

func TestSaveAndLoadSession(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := newTestSession(t, "g1", "brave-otter-42")
	require.NoError(t, s.StartRound(0))
	bid := 16
	ok, msg := s.PlaceBid(s.Turn(), &bid)
	require.True(t, ok, msg)

	require.NoError(t, st.SaveSession(ctx, s))

	loaded, err := st.LoadSession(ctx, "g1", testLogger())
	require.NoError(t, err)
	assert.Equal(t, "g1", loaded.ID())
	assert.Equal(t, "brave-otter-42", loaded.ShortCode())
	assert.Equal(t, game.PhaseBidding, loaded.Phase())
	assert.Equal(t, s.Turn(), loaded.Turn())
	assert.Equal(t, s.HandFor(0), loaded.HandFor(0))

	// Saving again after progress overwrites the old snapshot.
	ok, msg = s.PlaceBid(s.Turn(), nil)
	require.True(t, ok, msg)
	require.NoError(t, st.SaveSession(ctx, s))
	loaded, err = st.LoadSession(ctx, "g1", testLogger())
	require.NoError(t, err)
	assert.Equal(t, s.Turn(), loaded.Turn())
}

func TestLoadSessionNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.LoadSession(context.Background(), "missing", testLogger())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadAll(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s := newTestSession(t, fmt.Sprintf("g%d", i), "")
		require.NoError(t, st.SaveSession(ctx, s))
	}

	sessions, err := st.LoadAll(ctx, testLogger())
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestResolveShortCode(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSession(ctx, newTestSession(t, "g1", "brave-otter-42")))
	require.NoError(t, st.SaveSession(ctx, newTestSession(t, "g2", "")))
	require.NoError(t, st.SaveSession(ctx, newTestSession(t, "g3", "")))

	id, err := st.ResolveShortCode(ctx, "brave-otter-42")
	require.NoError(t, err)
	assert.Equal(t, "g1", id)

	_, err = st.ResolveShortCode(ctx, "calm-lynx-77")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGame(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSession(ctx, newTestSession(t, "g1", "")))
	require.NoError(t, st.DeleteGame(ctx, "g1"))

	_, err := st.LoadSession(ctx, "g1", testLogger())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.DeleteGame(ctx, "g1"), ErrNotFound)
}

func TestSweepOnce(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	mock := quartz.NewMock(t)

	lobby := newTestSession(t, "g-lobby", "")
	require.NoError(t, st.SaveSession(ctx, lobby))

	active := newTestSession(t, "g-active", "")
	require.NoError(t, active.StartRound(0))
	require.NoError(t, st.SaveSession(ctx, active))

	fresh := newTestSession(t, "g-fresh", "")
	require.NoError(t, st.SaveSession(ctx, fresh))

	// Age the first two past their retention windows.
	stamp := func(id string, age time.Duration) {
		_, err := st.db.Exec(`UPDATE games SET updated_at = ? WHERE id = ?`,
			mock.Now().Add(-age).Unix(), id)
		require.NoError(t, err)
	}
	stamp("g-lobby", lobbyTTL+time.Minute)
	stamp("g-active", activeTTL+time.Minute)
	stamp("g-fresh", time.Minute)

	sw := NewSweeper(st, mock, time.Minute)
	n, err := sw.SweepOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = st.LoadSession(ctx, "g-lobby", testLogger())
	assert.ErrorIs(t, err, ErrNotFound, "snapshot goes with the game row")
	_, err = st.LoadSession(ctx, "g-fresh", testLogger())
	assert.NoError(t, err)
}

func TestSweeperRun(t *testing.T) {
	st := openTestStore(t)
	mock := quartz.NewMock(t)
	trap := mock.Trap().TickerFunc("store.sweeper")
	defer trap.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := NewSweeper(st, mock, time.Minute)
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	mock.Advance(time.Minute).MustWait(ctx)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
