package risk

import (
	"testing"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func championSnapshot() domain.ScoreSnapshot {
	return domain.ScoreSnapshot{
		DealID:       "deal-1",
		CoveredRoles: []domain.Role{domain.RoleChampion, domain.RoleInfluencer},
		Contacts: []domain.ContactScore{
			{ContactID: "ch", Role: domain.RoleChampion, Score: 20},
		},
	}
}

// Scenario: weak champion history on every axis pushes churn to HIGH.
func TestChampionChurn_HighFromHistory(t *testing.T) {
	hist := History{
		ChampionResponseRate: floatPtr(0.2),
		MissedMeetings:       3,
		DaysSinceContact:     intPtr(21),
	}
	p := Predict(domain.Deal{ID: "deal-1", Stage: domain.StageQualifiedToBuy}, championSnapshot(), hist)

	if p.ChampionChurn.Score != 70 {
		t.Errorf("churn score = %d, want 70 (25+20+25)", p.ChampionChurn.Score)
	}
	if p.ChampionChurn.Level != LevelHigh {
		t.Errorf("churn level = %s, want HIGH", p.ChampionChurn.Level)
	}
	if p.Overall != LevelHigh {
		t.Errorf("overall = %s, want HIGH when a sub-model is HIGH", p.Overall)
	}
	if len(p.PriorityActions) == 0 {
		t.Fatal("expected priority actions")
	}
}

func TestChampionChurn_UnknownWithoutChampion(t *testing.T) {
	snap := domain.ScoreSnapshot{CoveredRoles: []domain.Role{domain.RoleEndUser}}
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageQualifiedToBuy}, snap, History{})
	if p.ChampionChurn.Level != LevelUnknown {
		t.Errorf("churn level = %s, want UNKNOWN with no champion", p.ChampionChurn.Level)
	}
}

func TestChampionChurn_EngagementDrop(t *testing.T) {
	hist := History{EngagementDelta: intPtr(-25)}
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageQualifiedToBuy}, championSnapshot(), hist)
	if p.ChampionChurn.Score != 30 {
		t.Errorf("churn score = %d, want 30 for an engagement drop", p.ChampionChurn.Score)
	}
	if p.ChampionChurn.Level != LevelMedium {
		t.Errorf("churn level = %s, want MEDIUM", p.ChampionChurn.Level)
	}
}

// Scenario: contract sent with only CHAMPION and INFLUENCER covered. The
// late-stage economic-buyer gap is worth the full 60-point penalty.
func TestEconomicBuyer_LateStageGapIsHigh(t *testing.T) {
	p := Predict(domain.Deal{ID: "deal-1", Stage: domain.StageContractSent}, championSnapshot(), History{})

	if p.EconomicBuyer.Score != 60 {
		t.Errorf("economic buyer score = %d, want 60", p.EconomicBuyer.Score)
	}
	if p.EconomicBuyer.Level != LevelHigh {
		t.Errorf("economic buyer level = %s, want HIGH", p.EconomicBuyer.Level)
	}
}

func TestEconomicBuyer_EarlyStageGapIsMild(t *testing.T) {
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageAppointmentScheduled}, championSnapshot(), History{})
	if p.EconomicBuyer.Score != 15 {
		t.Errorf("economic buyer score = %d, want 15 at an early stage", p.EconomicBuyer.Score)
	}
	if p.EconomicBuyer.Level != LevelLow {
		t.Errorf("economic buyer level = %s, want LOW", p.EconomicBuyer.Level)
	}
}

func TestEconomicBuyer_UnknownStageGapIsMidBand(t *testing.T) {
	p := Predict(domain.Deal{ID: "d", Stage: "customstage"}, championSnapshot(), History{})
	if p.EconomicBuyer.Score != 40 {
		t.Errorf("economic buyer score = %d, want 40 for an unrecognized stage", p.EconomicBuyer.Score)
	}
	if p.EconomicBuyer.Level == LevelHigh {
		t.Error("unrecognized stage must not take the late-stage maximum")
	}
}

func TestEconomicBuyer_CoveredButUnderEngaged(t *testing.T) {
	snap := domain.ScoreSnapshot{
		CoveredRoles: []domain.Role{domain.RoleDecisionMaker, domain.RoleChampion},
		Contacts: []domain.ContactScore{
			{ContactID: "dm", Role: domain.RoleDecisionMaker, Score: 10},
			{ContactID: "ch", Role: domain.RoleChampion, Score: 80},
		},
	}
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageContractSent}, snap, History{})
	if p.EconomicBuyer.Score != 25 {
		t.Errorf("economic buyer score = %d, want 25 for under-engaged buyer", p.EconomicBuyer.Score)
	}
}

func TestMeetingProgression_StalledCadence(t *testing.T) {
	hist := History{
		MeetingsSinceStageChange: 6,
		DaysSinceLastMeeting:     intPtr(20),
		AttendeeCountDelta:       floatPtr(-2.5),
	}
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageQualifiedToBuy}, championSnapshot(), hist)
	if p.MeetingProgression.Score != 80 {
		t.Errorf("meeting score = %d, want 80 (35+25+20)", p.MeetingProgression.Score)
	}
	if p.MeetingProgression.Level != LevelHigh {
		t.Errorf("meeting level = %s, want HIGH", p.MeetingProgression.Level)
	}
}

func TestPredict_HealthyDeal(t *testing.T) {
	snap := domain.ScoreSnapshot{
		CoveredRoles: []domain.Role{domain.RoleDecisionMaker, domain.RoleBudgetHolder, domain.RoleChampion},
		Contacts: []domain.ContactScore{
			{ContactID: "dm", Role: domain.RoleDecisionMaker, Score: 80},
			{ContactID: "bh", Role: domain.RoleBudgetHolder, Score: 75},
			{ContactID: "ch", Role: domain.RoleChampion, Score: 90},
		},
	}
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageContractSent}, snap, History{})
	if p.Overall != LevelHealthy {
		t.Errorf("overall = %s (composite %d), want HEALTHY", p.Overall, p.Composite)
	}
	if len(p.PriorityActions) != 0 {
		t.Errorf("unexpected priority actions: %v", p.PriorityActions)
	}
}

func TestPredict_PriorityActionOrdering(t *testing.T) {
	hist := History{
		ChampionResponseRate:     floatPtr(0.1),
		MissedMeetings:           2,
		DaysSinceContact:         intPtr(30),
		MeetingsSinceStageChange: 7,
		DaysSinceLastMeeting:     intPtr(30),
	}
	p := Predict(domain.Deal{ID: "d", Stage: domain.StageContractSent}, championSnapshot(), hist)

	if len(p.PriorityActions) != 3 {
		t.Fatalf("actions = %d, want 3", len(p.PriorityActions))
	}
	// Champion action always leads, then economic buyer, then meetings.
	if p.PriorityActions[0] == "" || p.PriorityActions[0][:9] != "Re-engage" {
		t.Errorf("first action = %q, want the champion action", p.PriorityActions[0])
	}
}

func TestOverrideBenchmarks(t *testing.T) {
	OverrideBenchmarks(map[string]StageBenchmark{
		"negotiationreview": {ExpectedDays: 5, MaxDays: 10},
		// MaxDays below ExpectedDays is rejected; the stage keeps its
		// built-in entry.
		domain.StageContractSent: {ExpectedDays: 30, MaxDays: 3},
	})

	got := BenchmarkForStage("negotiationreview")
	if got.ExpectedDays != 5 || got.MaxDays != 10 {
		t.Errorf("custom stage benchmark = %+v, want {5 10}", got)
	}

	kept := BenchmarkForStage(domain.StageContractSent)
	if kept.ExpectedDays != 14 || kept.MaxDays != 30 {
		t.Errorf("contract stage benchmark = %+v, want built-in {14 30}", kept)
	}

	// The override must feed velocity verdicts too.
	v := CheckVelocityAt(domain.Deal{
		Stage:          "negotiationreview",
		StageEnteredAt: timePtr(now.Add(-12 * 24 * time.Hour)),
	}, now)
	if v.Status != VelocityStuck {
		t.Errorf("status = %s, want %s with the tightened benchmark", v.Status, VelocityStuck)
	}
}

func TestCheckVelocityAt(t *testing.T) {
	tests := []struct {
		name    string
		stage   string
		entered *time.Time
		want    VelocityStatus
	}{
		{"missing timestamp", domain.StageQualifiedToBuy, nil, VelocityUnknown},
		{"future timestamp", domain.StageQualifiedToBuy, timePtr(now.Add(24 * time.Hour)), VelocityUnknown},
		{"fresh", domain.StageQualifiedToBuy, timePtr(now.Add(-2 * 24 * time.Hour)), VelocityOnTrack},
		{"slowing", domain.StageQualifiedToBuy, timePtr(now.Add(-20 * 24 * time.Hour)), VelocitySlowing},
		{"stuck", domain.StageQualifiedToBuy, timePtr(now.Add(-40 * 24 * time.Hour)), VelocityStuck},
		{"unknown stage uses default", "weird_stage", timePtr(now.Add(-50 * 24 * time.Hour)), VelocityStuck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckVelocityAt(domain.Deal{Stage: tt.stage, StageEnteredAt: tt.entered}, now)
			if v.Status != tt.want {
				t.Errorf("status = %s, want %s (days=%d)", v.Status, tt.want, v.DaysInStage)
			}
		})
	}
}
