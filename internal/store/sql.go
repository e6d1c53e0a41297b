package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/bullscows/internal/game"
)

// sqlStore persists session snapshots as JSON rows in the sessions table.
type sqlStore struct {
	db       *sql.DB
	defaults []game.Option
}

// NewSQLStore returns a Store backed by db. defaults are applied to every
// session rebuilt by Get, before any per-call options.
func NewSQLStore(db *sql.DB, defaults ...game.Option) Store {
	return &sqlStore{db: db, defaults: defaults}
}

func (s *sqlStore) Save(ctx context.Context, sess *game.Session) error {
	snap := sess.Snapshot()
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("save session %s: encode: %w", sess.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, owner_id, mode, phase, snapshot, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            owner_id=excluded.owner_id,
            mode=excluded.mode,
            phase=excluded.phase,
            snapshot=excluded.snapshot,
            updated_at=excluded.updated_at`,
		snap.ID, snap.OwnerID, string(snap.Mode), string(snap.Phase), string(blob),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string, opts ...game.Option) (*game.Session, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM sessions WHERE id=?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(blob), &snap); err != nil {
		return nil, fmt.Errorf("get session %s: decode: %w", id, err)
	}
	all := append(append([]game.Option{}, s.defaults...), opts...)
	return game.Restore(snap, all...)
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
