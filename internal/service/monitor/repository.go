package monitor

import (
	"context"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
	"github.com/ignite/dealthread-monitor/internal/notify"
)

// DealSource fetches deals and their stakeholders. Implementations must be
// safe for concurrent use.
type DealSource interface {
	// ListDeals returns all deals, optionally filtered to the given stages.
	ListDeals(ctx context.Context, stages []string) ([]domain.Deal, error)

	// GetDeal returns a single deal.
	GetDeal(ctx context.Context, dealID string) (domain.Deal, error)

	// DealContacts returns the stakeholders on a deal. A deal with no
	// contacts yields an empty slice, not an error.
	DealContacts(ctx context.Context, dealID string) ([]domain.Contact, error)
}

// SnapshotStore persists score snapshots across evaluation cycles.
// Implementations must be safe for concurrent use.
type SnapshotStore interface {
	// Save persists one snapshot.
	Save(ctx context.Context, snap domain.ScoreSnapshot) error

	// Latest returns the most recent snapshot for a deal.
	// Returns ErrSnapshotNotFound when the deal has never been evaluated.
	Latest(ctx context.Context, dealID string) (*domain.ScoreSnapshot, error)

	// History returns snapshots taken at or after since, newest first.
	History(ctx context.Context, dealID string, since time.Time, limit int) ([]domain.ScoreSnapshot, error)

	// PruneBefore deletes snapshots older than cutoff, returning the count.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// AlertDispatcher delivers one alert through its configured transports.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, deal domain.Deal, snap domain.ScoreSnapshot, alert lifecycle.Alert, actions []notify.ActionType) []notify.ActionResult
	ActionsFor(alert lifecycle.Alert) []notify.ActionType
}
