package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
	"github.com/ignite/dealthread-monitor/internal/notify"
)

type fakeSource struct {
	deal     domain.Deal
	contacts []domain.Contact
	listErr  error
}

func (f *fakeSource) ListDeals(_ context.Context, _ []string) ([]domain.Deal, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []domain.Deal{f.deal}, nil
}

func (f *fakeSource) GetDeal(_ context.Context, _ string) (domain.Deal, error) {
	return f.deal, nil
}

func (f *fakeSource) DealContacts(_ context.Context, _ string) ([]domain.Contact, error) {
	return f.contacts, nil
}

// fakeStore pins Latest to a fixed previous snapshot and records saves.
type fakeStore struct {
	previous *domain.ScoreSnapshot
	saved    []domain.ScoreSnapshot
}

func (f *fakeStore) Save(_ context.Context, snap domain.ScoreSnapshot) error {
	f.saved = append(f.saved, snap)
	return nil
}

func (f *fakeStore) Latest(_ context.Context, _ string) (*domain.ScoreSnapshot, error) {
	if f.previous == nil {
		return nil, ErrSnapshotNotFound
	}
	return f.previous, nil
}

func (f *fakeStore) History(_ context.Context, _ string, _ time.Time, _ int) ([]domain.ScoreSnapshot, error) {
	return nil, nil
}

func (f *fakeStore) PruneBefore(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

type fakeDispatcher struct {
	dispatched []lifecycle.Alert
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ domain.Deal, _ domain.ScoreSnapshot, alert lifecycle.Alert, actions []notify.ActionType) []notify.ActionResult {
	f.dispatched = append(f.dispatched, alert)
	results := make([]notify.ActionResult, 0, len(actions))
	for _, a := range actions {
		results = append(results, notify.ActionResult{ActionType: a, Success: true})
	}
	return results
}

func (f *fakeDispatcher) ActionsFor(_ lifecycle.Alert) []notify.ActionType {
	return []notify.ActionType{notify.ActionLogOnly}
}

func watchedDeal() domain.Deal {
	return domain.Deal{ID: "deal-1", Name: "Acme renewal", Stage: domain.StageDecisionMakerBoughtIn}
}

func watchedContacts() []domain.Contact {
	return []domain.Contact{
		{
			ID: "c1", Name: "Dana Okafor", Email: "dana@acme.test",
			Title: "VP of Engineering", ExplicitRole: "DECISION_MAKER",
			Engagement: domain.EngagementCounter{Meetings: 2, Emails: 6},
		},
		{
			ID: "c2", Name: "Priya Shah", Email: "priya@acme.test",
			Title: "Engineering Manager", ExplicitRole: "CHAMPION",
			Engagement: domain.EngagementCounter{Meetings: 2, Emails: 4},
		},
	}
}

func TestAssess_PurePipeline(t *testing.T) {
	svc := NewService(&fakeSource{}, nil, nil, nil)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	report := svc.Assess(watchedDeal(), watchedContacts(), at)

	assert.Equal(t, "deal-1", report.Snapshot.DealID)
	assert.True(t, report.Snapshot.Overall > 0)
	assert.True(t, report.Snapshot.HasRole(domain.RoleDecisionMaker))
	assert.True(t, report.Snapshot.HasRole(domain.RoleChampion))
	assert.Len(t, report.Inferences, 2)
	assert.NotEmpty(t, report.Coverage.Checklist)
	// Pure assessment never runs the lifecycle diff.
	assert.False(t, report.Lifecycle.FirstSnapshot)
	assert.Empty(t, report.Alerts)
}

func TestEvaluateDeal_FirstSnapshot(t *testing.T) {
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{}
	svc := NewService(&fakeSource{deal: watchedDeal(), contacts: watchedContacts()}, store, nil, dispatcher)

	report, err := svc.EvaluateDeal(context.Background(), "deal-1")
	require.NoError(t, err)

	assert.True(t, report.Lifecycle.FirstSnapshot)
	assert.Empty(t, report.Alerts)
	assert.Empty(t, dispatcher.dispatched)
	require.Len(t, store.saved, 1)
	assert.Equal(t, report.Snapshot.Overall, store.saved[0].Overall)
}

func TestEvaluateDeal_ChampionCoolingDeliveredThenThrottled(t *testing.T) {
	contacts := watchedContacts()
	// Current champion engagement: 2 meetings + 4 emails = score 60.
	previous := &domain.ScoreSnapshot{
		DealID:  "deal-1",
		TakenAt: time.Now().Add(-24 * time.Hour),
		Overall: 80,
		Contacts: []domain.ContactScore{
			{ContactID: "c1", Role: domain.RoleDecisionMaker, Score: 70},
			{ContactID: "c2", Role: domain.RoleChampion, Score: 85},
		},
	}

	store := &fakeStore{previous: previous}
	dispatcher := &fakeDispatcher{}
	throttle := lifecycle.NewThrottle(lifecycle.NewMemoryStore(), nil)
	svc := NewService(&fakeSource{deal: watchedDeal(), contacts: contacts}, store, throttle, dispatcher)

	report, err := svc.EvaluateDeal(context.Background(), "deal-1")
	require.NoError(t, err)

	var cooling *DeliveredAlert
	for i := range report.Alerts {
		if report.Alerts[i].Alert.Type == lifecycle.AlertChampionCooling {
			cooling = &report.Alerts[i]
		}
	}
	require.NotNil(t, cooling, "expected a CHAMPION_COOLING alert")
	assert.False(t, cooling.Throttled)
	require.Len(t, cooling.Results, 1)
	assert.True(t, cooling.Results[0].Success)

	// The previous snapshot is pinned, so the same alert fires again and the
	// throttle suppresses the duplicate.
	report, err = svc.EvaluateDeal(context.Background(), "deal-1")
	require.NoError(t, err)

	cooling = nil
	for i := range report.Alerts {
		if report.Alerts[i].Alert.Type == lifecycle.AlertChampionCooling {
			cooling = &report.Alerts[i]
		}
	}
	require.NotNil(t, cooling)
	assert.True(t, cooling.Throttled)
	assert.Empty(t, cooling.Results)
	assert.Len(t, dispatcher.dispatched, 1)
}

func TestEvaluateDeal_ChampionDropFeedsRiskHistory(t *testing.T) {
	previous := &domain.ScoreSnapshot{
		DealID:  "deal-1",
		TakenAt: time.Now().Add(-24 * time.Hour),
		Contacts: []domain.ContactScore{
			{ContactID: "c2", Role: domain.RoleChampion, Score: 85},
		},
	}
	store := &fakeStore{previous: previous}
	svc := NewService(&fakeSource{deal: watchedDeal(), contacts: watchedContacts()}, store, nil, nil)

	report, err := svc.EvaluateDeal(context.Background(), "deal-1")
	require.NoError(t, err)

	// Champion fell 85 → 60; the churn sub-model sees the 20+ point drop.
	found := false
	for _, f := range report.Risk.ChampionChurn.Factors {
		if f.Points == 30 {
			found = true
		}
	}
	assert.True(t, found, "expected the engagement-drop churn factor, got %+v", report.Risk.ChampionChurn.Factors)
}

func TestBuildHistory_NoChampionIsEmpty(t *testing.T) {
	snap := domain.ScoreSnapshot{Contacts: []domain.ContactScore{
		{ContactID: "c1", Role: domain.RoleEndUser, Score: 10},
	}}
	hist := buildHistory(nil, snap, time.Now())
	assert.Nil(t, hist.EngagementDelta)
	assert.Nil(t, hist.DaysSinceContact)
}
