// Package postgres persists score snapshots so lifecycle tracking can diff
// against the previous observation across restarts.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/service/monitor"
)

// SnapshotRepo stores score snapshots, one row per (deal, taken_at), with
// the full snapshot as a JSONB document plus indexed columns for listing.
type SnapshotRepo struct{ db *sql.DB }

// NewSnapshotRepo creates a Postgres-backed snapshot repository.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// EnsureSchema creates the snapshot table and its lookup index if they do
// not exist yet. Idempotent; mains call it once after connecting.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS deal_snapshots (
			id UUID PRIMARY KEY,
			deal_id VARCHAR(100) NOT NULL,
			taken_at TIMESTAMP WITH TIME ZONE NOT NULL,
			overall INTEGER NOT NULL DEFAULT 0,
			risk VARCHAR(20) NOT NULL DEFAULT '',
			snapshot JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create deal_snapshots: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_deal_snapshots_deal_taken
			ON deal_snapshots (deal_id, taken_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("index deal_snapshots: %w", err)
	}
	return nil
}

// Save persists one snapshot.
func (r *SnapshotRepo) Save(ctx context.Context, snap domain.ScoreSnapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO deal_snapshots (id, deal_id, taken_at, overall, risk, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), snap.DealID, snap.TakenAt, snap.Overall, snap.RiskLevel, doc)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a deal, or
// monitor.ErrSnapshotNotFound.
func (r *SnapshotRepo) Latest(ctx context.Context, dealID string) (*domain.ScoreSnapshot, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT snapshot FROM deal_snapshots
		WHERE deal_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`, dealID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, monitor.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}

	var snap domain.ScoreSnapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// History returns snapshots for a deal taken at or after since, newest
// first, capped at limit.
func (r *SnapshotRepo) History(ctx context.Context, dealID string, since time.Time, limit int) ([]domain.ScoreSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT snapshot FROM deal_snapshots
		WHERE deal_id = $1 AND taken_at >= $2
		ORDER BY taken_at DESC
		LIMIT $3
	`, dealID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreSnapshot
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap domain.ScoreSnapshot
		if err := json.Unmarshal(doc, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PruneBefore deletes snapshots older than the cutoff and reports how many
// rows went away. The worker calls this with the configured retention.
func (r *SnapshotRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM deal_snapshots WHERE taken_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
