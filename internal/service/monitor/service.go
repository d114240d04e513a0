package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/dealthread-monitor/internal/coverage"
	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
	"github.com/ignite/dealthread-monitor/internal/notify"
	"github.com/ignite/dealthread-monitor/internal/pkg/logger"
	"github.com/ignite/dealthread-monitor/internal/risk"
	"github.com/ignite/dealthread-monitor/internal/roles"
	"github.com/ignite/dealthread-monitor/internal/scoring"
)

// DeliveredAlert pairs one lifecycle alert with its throttle decision and,
// when admitted, the per-transport delivery results.
type DeliveredAlert struct {
	Alert     lifecycle.Alert       `json:"alert"`
	Throttled bool                  `json:"throttled"`
	Results   []notify.ActionResult `json:"results,omitempty"`
}

// Report is the complete evaluation output for one deal.
type Report struct {
	Deal            domain.Deal              `json:"deal"`
	Snapshot        domain.ScoreSnapshot     `json:"snapshot"`
	Recommendations []scoring.Recommendation `json:"recommendations,omitempty"`
	Coverage        coverage.Analysis        `json:"coverage"`
	Risk            risk.Prediction          `json:"risk"`
	Inferences      []roles.Inference        `json:"inferences,omitempty"`
	Lifecycle       lifecycle.Result         `json:"lifecycle"`
	Alerts          []DeliveredAlert         `json:"alerts,omitempty"`
}

// Service coordinates one evaluation cycle per deal. All public methods are
// safe for concurrent use.
type Service struct {
	source     DealSource
	store      SnapshotStore
	throttle   *lifecycle.Throttle
	dispatcher AlertDispatcher
	log        *logger.Logger
}

// NewService wires a monitor service. store and dispatcher may be nil: a nil
// store makes every evaluation a first snapshot, a nil dispatcher records
// alerts without delivering them.
func NewService(source DealSource, store SnapshotStore, throttle *lifecycle.Throttle, dispatcher AlertDispatcher) *Service {
	if throttle == nil {
		throttle = lifecycle.NewThrottle(lifecycle.NewMemoryStore(), nil)
	}
	return &Service{
		source:     source,
		store:      store,
		throttle:   throttle,
		dispatcher: dispatcher,
		log:        logger.Component("monitor"),
	}
}

// Assess runs the pure analysis pipeline over caller-supplied contacts:
// inference, scoring, coverage, and risk. No snapshot is loaded or saved and
// no alerts are sent, so it serves ad-hoc "what if" requests.
func (s *Service) Assess(deal domain.Deal, contacts []domain.Contact, at time.Time) Report {
	decorated, inferences := roles.InferRolesForContacts(contacts, roles.Aux{DealStage: deal.Stage, Now: at})
	snap := scoring.Score(deal.ID, decorated, at)

	return Report{
		Deal:            deal,
		Snapshot:        snap,
		Recommendations: scoring.Recommend(snap),
		Coverage:        coverage.Analyze(decorated, deal.Stage, at),
		Risk:            risk.Predict(deal, snap, buildHistory(nil, snap, at)),
		Inferences:      inferences,
	}
}

// ListDeals returns the deals visible to the monitor, optionally filtered
// to the given pipeline stages.
func (s *Service) ListDeals(ctx context.Context, stages []string) ([]domain.Deal, error) {
	return s.source.ListDeals(ctx, stages)
}

// AssessDeal fetches a deal from the CRM and runs the pure analysis
// pipeline. Nothing is persisted and no alerts are sent.
func (s *Service) AssessDeal(ctx context.Context, dealID string) (*Report, error) {
	deal, err := s.source.GetDeal(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("assess deal %s: %w", dealID, err)
	}
	contacts, err := s.source.DealContacts(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("assess deal %s: %w", dealID, err)
	}
	report := s.Assess(deal, contacts, time.Now().UTC())
	return &report, nil
}

// SnapshotHistory returns persisted snapshots for a deal, newest first.
// Returns ErrSnapshotNotFound when snapshot storage is not configured.
func (s *Service) SnapshotHistory(ctx context.Context, dealID string, since time.Time, limit int) ([]domain.ScoreSnapshot, error) {
	if s.store == nil {
		return nil, ErrSnapshotNotFound
	}
	return s.store.History(ctx, dealID, since, limit)
}

// AlertThrottleState is the throttle view for one alert type on one deal.
type AlertThrottleState struct {
	AlertType lifecycle.AlertType `json:"alert_type"`
	Throttled bool                `json:"throttled"`
	Cooldown  string              `json:"cooldown"`
}

// ThrottleStatus reports, per alert type, whether a new alert for the deal
// would currently be suppressed.
func (s *Service) ThrottleStatus(ctx context.Context, dealID string) ([]AlertThrottleState, error) {
	now := time.Now()
	states := make([]AlertThrottleState, 0, len(lifecycle.AllAlertTypes()))
	for _, at := range lifecycle.AllAlertTypes() {
		throttled, err := s.throttle.ShouldThrottle(ctx, dealID, at, now)
		if err != nil {
			return nil, fmt.Errorf("throttle status for %s: %w", dealID, err)
		}
		states = append(states, AlertThrottleState{
			AlertType: at,
			Throttled: throttled,
			Cooldown:  s.throttle.Cooldown(at).String(),
		})
	}
	return states, nil
}

// EvaluateDeal runs the full cycle for one deal: fetch, assess, diff against
// the stored snapshot, throttle and deliver alerts, persist the new snapshot.
func (s *Service) EvaluateDeal(ctx context.Context, dealID string) (*Report, error) {
	deal, err := s.source.GetDeal(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("evaluate deal %s: %w", dealID, err)
	}

	contacts, err := s.source.DealContacts(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("evaluate deal %s: %w", dealID, err)
	}

	now := time.Now().UTC()
	previous, err := s.loadPrevious(ctx, dealID)
	if err != nil {
		return nil, err
	}

	report := s.Assess(deal, contacts, now)
	if previous != nil {
		report.Risk = risk.Predict(deal, report.Snapshot, buildHistory(previous, report.Snapshot, now))
	}
	report.Lifecycle = lifecycle.Track(report.Snapshot, previous)
	report.Alerts = s.deliverAlerts(ctx, deal, report.Snapshot, report.Lifecycle.Alerts)

	if s.store != nil {
		if err := s.store.Save(ctx, report.Snapshot); err != nil {
			return nil, fmt.Errorf("evaluate deal %s: %w", dealID, err)
		}
	}

	s.log.Info("deal evaluated",
		"deal_id", deal.ID,
		"overall", report.Snapshot.Overall,
		"risk", string(report.Snapshot.RiskLevel),
		"alerts", len(report.Lifecycle.Alerts))
	return &report, nil
}

func (s *Service) loadPrevious(ctx context.Context, dealID string) (*domain.ScoreSnapshot, error) {
	if s.store == nil {
		return nil, nil
	}
	previous, err := s.store.Latest(ctx, dealID)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot for %s: %w", dealID, err)
	}
	return previous, nil
}

// deliverAlerts admits each alert through the throttle and dispatches the
// admitted ones. Throttle store errors fail open: better a duplicate ping
// than a silently dropped one.
func (s *Service) deliverAlerts(ctx context.Context, deal domain.Deal, snap domain.ScoreSnapshot, alerts []lifecycle.Alert) []DeliveredAlert {
	if len(alerts) == 0 {
		return nil
	}

	out := make([]DeliveredAlert, 0, len(alerts))
	for _, alert := range alerts {
		admitted, err := s.throttle.Admit(ctx, deal.ID, alert.Type, time.Now())
		if err != nil {
			s.log.Warn("throttle check failed", "deal_id", deal.ID, "alert_type", string(alert.Type), "error", err.Error())
			admitted = true
		}

		delivered := DeliveredAlert{Alert: alert, Throttled: !admitted}
		if admitted && s.dispatcher != nil {
			delivered.Results = s.dispatcher.Dispatch(ctx, deal, snap, alert, s.dispatcher.ActionsFor(alert))
		}
		out = append(out, delivered)
	}
	return out
}

// buildHistory derives the risk predictor's auxiliary history from the
// previous snapshot. Fields the counters cannot support (meeting cadence,
// attendee trends) stay unobserved and mute their factors.
func buildHistory(previous *domain.ScoreSnapshot, current domain.ScoreSnapshot, now time.Time) risk.History {
	var hist risk.History

	champion := championLine(current)
	if champion == nil {
		return hist
	}

	if champion.LastEngagedAt != nil {
		days := int(now.Sub(*champion.LastEngagedAt).Hours() / 24)
		if days >= 0 {
			hist.DaysSinceContact = &days
		}
	}

	if previous != nil {
		if prev := previous.ContactByKey(champion.Key()); prev != nil {
			delta := champion.Score - prev.Score
			hist.EngagementDelta = &delta
		}
	}
	return hist
}

func championLine(snap domain.ScoreSnapshot) *domain.ContactScore {
	var best *domain.ContactScore
	for i := range snap.Contacts {
		cs := &snap.Contacts[i]
		if cs.Role != domain.RoleChampion {
			continue
		}
		if best == nil || cs.Score > best.Score {
			best = cs
		}
	}
	return best
}
