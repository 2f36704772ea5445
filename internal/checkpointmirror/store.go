// Package checkpointmirror best-effort mirrors a Journal's checkpoint
// bookkeeping into Postgres, for external tooling/dashboards that need to
// observe checkpoints without reading the journal's in-process state. It
// is never on the durability-critical path: the journal never blocks on,
// retries, or fails because of a mirror error (SPEC_FULL.md §4, §7).
package checkpointmirror

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Checkpoint is the mirrored row shape.
type Checkpoint struct {
	ID             uint64
	FirstSegmentID uint64
	RegisteredAt   time.Time
}

// Store mirrors checkpoint registration and retirement into a single
// Postgres table. It implements journal.CheckpointMirror.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool. Callers own the pool's lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the mirror table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS journal_checkpoints (
			checkpoint_id     BIGINT PRIMARY KEY,
			first_segment_id  BIGINT NOT NULL,
			registered_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("checkpointmirror: ensure schema: %w", err)
	}
	return nil
}

// Registered mirrors a newly registered checkpoint.
func (s *Store) Registered(ctx context.Context, id, firstSegmentID uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO journal_checkpoints (checkpoint_id, first_segment_id, registered_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (checkpoint_id) DO NOTHING
	`, id, firstSegmentID)
	if err != nil {
		return fmt.Errorf("checkpointmirror: registered: %w", err)
	}
	return nil
}

// Forgotten mirrors the retirement of a checkpoint once CheckCheckpoint
// has reclaimed every segment older than it.
func (s *Store) Forgotten(ctx context.Context, id uint64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM journal_checkpoints WHERE checkpoint_id = $1`, id)
	if err != nil {
		return fmt.Errorf("checkpointmirror: forgotten: %w", err)
	}
	return nil
}

// List returns every mirrored checkpoint, oldest first.
func (s *Store) List(ctx context.Context) ([]Checkpoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT checkpoint_id, first_segment_id, registered_at
		FROM journal_checkpoints
		ORDER BY checkpoint_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("checkpointmirror: list: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var c Checkpoint
		if err := rows.Scan(&c.ID, &c.FirstSegmentID, &c.RegisteredAt); err != nil {
			return nil, fmt.Errorf("checkpointmirror: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checkpointmirror: rows: %w", err)
	}
	return out, nil
}
