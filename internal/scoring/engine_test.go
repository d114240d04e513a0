package scoring

import (
	"testing"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestEngagementScore_ChannelCapsAndPriority(t *testing.T) {
	tests := []struct {
		name string
		eng  domain.EngagementCounter
		want int
	}{
		{"empty", domain.EngagementCounter{}, 0},
		{"one email", domain.EngagementCounter{Emails: 1}, 5},
		{"email cap", domain.EngagementCounter{Emails: 20}, 30},
		{"one call", domain.EngagementCounter{Calls: 1}, 15},
		{"call cap", domain.EngagementCounter{Calls: 10}, 30},
		{"one meeting", domain.EngagementCounter{Meetings: 1}, 20},
		{"meeting cap", domain.EngagementCounter{Meetings: 5}, 40},
		{"all maxed", domain.EngagementCounter{Emails: 10, Calls: 5, Meetings: 3}, 100},
		{"total cap", domain.EngagementCounter{Emails: 100, Calls: 100, Meetings: 100}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EngagementScore(tt.eng); got != tt.want {
				t.Errorf("EngagementScore(%+v) = %d, want %d", tt.eng, got, tt.want)
			}
		})
	}
}

// Meetings must outscore calls, and calls outscore emails, for equal counts.
func TestEngagementScore_ChannelPriorityInvariant(t *testing.T) {
	for n := 1; n <= 5; n++ {
		meetings := EngagementScore(domain.EngagementCounter{Meetings: n})
		calls := EngagementScore(domain.EngagementCounter{Calls: n})
		emails := EngagementScore(domain.EngagementCounter{Emails: n})
		if meetings < calls || calls < emails {
			t.Errorf("n=%d: meetings %d, calls %d, emails %d violate channel priority", n, meetings, calls, emails)
		}
	}
}

func TestEngagementScore_Monotonic(t *testing.T) {
	base := domain.EngagementCounter{Emails: 2, Meetings: 1, Calls: 1}
	baseScore := EngagementScore(base)
	for _, bumped := range []domain.EngagementCounter{
		{Emails: 3, Meetings: 1, Calls: 1},
		{Emails: 2, Meetings: 2, Calls: 1},
		{Emails: 2, Meetings: 1, Calls: 2},
	} {
		if EngagementScore(bumped) < baseScore {
			t.Errorf("score decreased when adding engagement: %+v", bumped)
		}
	}
}

func TestScore_EmptyContactList(t *testing.T) {
	snap := Score("deal-1", nil, testTime)
	if snap.Overall != 0 {
		t.Errorf("overall = %d, want 0", snap.Overall)
	}
	if snap.RiskLevel != domain.RiskHigh {
		t.Errorf("risk = %s, want HIGH", snap.RiskLevel)
	}
	if len(snap.MissingKeyRoles) != 3 {
		t.Errorf("missing key roles = %v, want all three", snap.MissingKeyRoles)
	}
}

func TestScore_BoundsHold(t *testing.T) {
	contacts := []domain.Contact{
		{ID: "a", EffectiveRole: domain.RoleDecisionMaker, Engagement: domain.EngagementCounter{Meetings: 50, Calls: 50, Emails: 50}},
		{ID: "b", EffectiveRole: domain.RoleChampion, Engagement: domain.EngagementCounter{Meetings: 50, Calls: 50, Emails: 50}},
		{ID: "c", EffectiveRole: domain.RoleBudgetHolder, Engagement: domain.EngagementCounter{Meetings: 50}},
		{ID: "d", EffectiveRole: domain.RoleEndUser, Engagement: domain.EngagementCounter{Emails: 50}},
	}
	snap := Score("deal-1", contacts, testTime)
	if snap.Overall < 0 || snap.Overall > 100 {
		t.Errorf("overall %d out of bounds", snap.Overall)
	}
	if snap.RiskLevel != domain.RiskLow {
		t.Errorf("risk = %s, want LOW for a fully covered, heavily engaged deal", snap.RiskLevel)
	}
}

func TestScoreRoleCoverage_AllKeyRolesCovered(t *testing.T) {
	contacts := []domain.Contact{
		{ID: "a", EffectiveRole: domain.RoleDecisionMaker},
		{ID: "b", EffectiveRole: domain.RoleBudgetHolder},
		{ID: "c", EffectiveRole: domain.RoleChampion},
	}
	rc := ScoreRoleCoverage(contacts)
	if rc.Score < 70 {
		t.Errorf("score = %d, want >= 70 with all key roles covered", rc.Score)
	}
	if len(rc.MissingKeyRoles) != 0 {
		t.Errorf("missing key roles = %v, want none", rc.MissingKeyRoles)
	}
}

func TestScore_ThreadDepthCountsEngagedContacts(t *testing.T) {
	contacts := []domain.Contact{
		{ID: "a", Engagement: domain.EngagementCounter{Emails: 1}},
		{ID: "b"},
		{ID: "c", Engagement: domain.EngagementCounter{Meetings: 2}},
	}
	snap := Score("deal-1", contacts, testTime)
	if snap.ThreadDepth != 2 {
		t.Errorf("thread depth = %d, want 2", snap.ThreadDepth)
	}
}

// Scenario: one contact with a single email and no role. Low-teens score,
// HIGH risk, single-thread warning first.
func TestScore_SingleThreadScenario(t *testing.T) {
	contacts := []domain.Contact{
		{ID: "only", Name: "Only Contact", Engagement: domain.EngagementCounter{Emails: 1}},
	}
	snap := Score("deal-1", contacts, testTime)
	if snap.Overall < 1 || snap.Overall > 19 {
		t.Errorf("overall = %d, want low single digits to teens", snap.Overall)
	}
	if snap.RiskLevel != domain.RiskHigh {
		t.Errorf("risk = %s, want HIGH", snap.RiskLevel)
	}

	recs := Recommend(snap)
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].Type != RecSingleThreadRisk {
		t.Errorf("first recommendation = %s, want SINGLE_THREAD_RISK", recs[0].Type)
	}
}

// Scenario: four well-engaged contacts covering all key roles plus an end
// user. Overall at least 60 and no missing key roles.
func TestScore_WellCoveredScenario(t *testing.T) {
	mk := func(id string, role domain.Role) domain.Contact {
		return domain.Contact{
			ID:            id,
			EffectiveRole: role,
			Engagement:    domain.EngagementCounter{Meetings: 2, Emails: 4},
		}
	}
	contacts := []domain.Contact{
		mk("a", domain.RoleDecisionMaker),
		mk("b", domain.RoleBudgetHolder),
		mk("c", domain.RoleChampion),
		mk("d", domain.RoleEndUser),
	}
	snap := Score("deal-1", contacts, testTime)
	if snap.Overall < 60 {
		t.Errorf("overall = %d, want >= 60", snap.Overall)
	}
	if len(snap.MissingKeyRoles) != 0 {
		t.Errorf("missing key roles = %v, want none", snap.MissingKeyRoles)
	}
	if snap.RiskLevel == domain.RiskHigh {
		t.Errorf("risk = %s for a well-covered deal", snap.RiskLevel)
	}
}

func TestRecommend_PriorityOrderingStable(t *testing.T) {
	contacts := []domain.Contact{
		{ID: "a", EffectiveRole: domain.RoleEndUser, Engagement: domain.EngagementCounter{Emails: 1}},
		{ID: "b", EffectiveRole: domain.RoleInfluencer, Engagement: domain.EngagementCounter{Emails: 1}},
	}
	snap := Score("deal-1", contacts, testTime)
	recs := Recommend(snap)

	lastRank := -1
	for _, r := range recs {
		if r.Priority.Rank() < lastRank {
			t.Fatalf("recommendations out of priority order: %+v", recs)
		}
		lastRank = r.Priority.Rank()
	}

	// Missing key roles and the critical gap both fire at HIGH here.
	if recs[0].Type != RecMissingKeyRoles {
		t.Errorf("first recommendation = %s, want MISSING_KEY_ROLES", recs[0].Type)
	}
}

func TestRecommend_StrongPosition(t *testing.T) {
	mk := func(id string, role domain.Role) domain.Contact {
		return domain.Contact{
			ID:            id,
			EffectiveRole: role,
			Engagement:    domain.EngagementCounter{Meetings: 3, Calls: 2, Emails: 6},
		}
	}
	snap := Score("deal-1", []domain.Contact{
		mk("a", domain.RoleDecisionMaker),
		mk("b", domain.RoleBudgetHolder),
		mk("c", domain.RoleChampion),
	}, testTime)

	recs := Recommend(snap)
	found := false
	for _, r := range recs {
		if r.Type == RecStrongPosition {
			found = true
			if r.Priority != domain.PriorityLow {
				t.Errorf("strong position priority = %s, want LOW", r.Priority)
			}
		}
	}
	if !found {
		t.Errorf("expected STRONG_POSITION for overall %d with %d contacts", snap.Overall, snap.ContactCount)
	}
}
