// Package store persists game snapshots to SQLite so active games survive a
// server restart and finished games remain queryable until swept.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/jerynmathew/thurup/internal/game"
)

// ErrNotFound is returned when no game matches the id or short code.
var ErrNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	short_code  TEXT,
	mode        TEXT NOT NULL,
	seats       INTEGER NOT NULL,
	phase       TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS games_short_code
	ON games (short_code) WHERE short_code != '';

CREATE TABLE IF NOT EXISTS snapshots (
	game_id TEXT PRIMARY KEY REFERENCES games (id) ON DELETE CASCADE,
	data    TEXT NOT NULL
);
`

// Store wraps the SQLite handle. Methods are safe for concurrent use; the
// driver serializes writes.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger.WithPrefix("store")}, nil
}

// Close releases the database handle.
func (st *Store) Close() error {
	return st.db.Close()
}

// SaveSession upserts the session's full snapshot plus the metadata columns
// the sweeper queries.
func (st *Store) SaveSession(ctx context.Context, s *game.Session) error {
	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.GameID, err)
	}
	now := time.Now().Unix()

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, short_code, mode, seats, phase, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			short_code = excluded.short_code,
			phase      = excluded.phase,
			updated_at = excluded.updated_at`,
		snap.GameID, snap.ShortCode, string(snap.Mode), snap.Seats, snap.Phase.String(), now, now)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", snap.GameID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (game_id, data) VALUES (?, ?)
		ON CONFLICT (game_id) DO UPDATE SET data = excluded.data`,
		snap.GameID, string(data))
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snap.GameID, err)
	}
	return tx.Commit()
}

// LoadSession rebuilds one session from its stored snapshot.
func (st *Store) LoadSession(ctx context.Context, id string, logger *log.Logger) (*game.Session, error) {
	var data string
	err := st.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE game_id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return game.Restore(snap, logger)
}

// LoadAll rebuilds every stored session, skipping (and logging) any row
// that no longer decodes.
func (st *Store) LoadAll(ctx context.Context, logger *log.Logger) ([]*game.Session, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT game_id, data FROM snapshots`)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	var sessions []*game.Session
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var snap game.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			st.logger.Warn("skipping undecodable snapshot", "game", id, "err", err)
			continue
		}
		s, err := game.Restore(snap, logger)
		if err != nil {
			st.logger.Warn("skipping unrestorable snapshot", "game", id, "err", err)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ResolveShortCode returns the game id registered under the code.
func (st *Store) ResolveShortCode(ctx context.Context, code string) (string, error) {
	var id string
	err := st.db.QueryRowContext(ctx,
		`SELECT id FROM games WHERE short_code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: code %s", ErrNotFound, code)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// DeleteGame removes a game and its snapshot.
func (st *Store) DeleteGame(ctx context.Context, id string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
