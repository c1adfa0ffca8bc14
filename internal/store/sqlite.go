// internal/store/sqlite.go
//
// SQLite-backed Store. In-progress sessions survive a restart.
//
// Characteristics:
//   - Sessions are stored as JSON (game.State) in the sessions table.
//   - Live *game.Session pointers are cached in memory so concurrent requests
//     in one process mutate the same object; the DB is written through on Save.
//   - Get falls back to the DB on a cache miss and restores the session.
//   - Export and upsert happen under one lock, so rows are written in the
//     order sessions changed; a submitted row is never replaced by an
//     unsubmitted one.
//   - Schema comes from the embedded migrations (see db.go).

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/pronounce/internal/game"
)

type sqliteStore struct {
	mu    sync.Mutex // serializes Save
	db    *sql.DB
	cache Store
}

// NewSQLiteStore wraps an open, migrated database handle.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db, cache: NewMemoryStore()}
}

// Save upserts the session row and refreshes the cache.
func (s *sqliteStore) Save(ctx context.Context, sess *game.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := sess.Export()
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", st.ID, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, dataset, state, submitted, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            state = excluded.state,
            submitted = excluded.submitted,
            updated_at = excluded.updated_at
        WHERE sessions.submitted = 0 OR excluded.submitted = 1`,
		st.ID, st.Dataset, string(b), st.Submitted, now, now,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", st.ID, err)
	}
	return s.cache.Save(ctx, sess)
}

// Get returns the cached session or restores it from the DB.
func (s *sqliteStore) Get(ctx context.Context, id string) (*game.Session, error) {
	if sess, err := s.cache.Get(ctx, id); err == nil {
		return sess, nil
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id=?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var st game.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess, err := game.Restore(st, nil)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
