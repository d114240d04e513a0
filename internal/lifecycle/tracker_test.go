package lifecycle

import (
	"testing"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func snapWith(overall, depth int, contacts ...domain.ContactScore) domain.ScoreSnapshot {
	return domain.ScoreSnapshot{
		DealID:      "deal-1",
		TakenAt:     now,
		Overall:     overall,
		ThreadDepth: depth,
		Contacts:    contacts,
	}
}

func hasChange(changes []Change, t ChangeType, key string) bool {
	for _, c := range changes {
		if c.Type == t && c.ContactKey == key {
			return true
		}
	}
	return false
}

func hasAlert(alerts []Alert, at AlertType) bool {
	for _, a := range alerts {
		if a.Type == at {
			return true
		}
	}
	return false
}

func TestTrack_FirstSnapshot(t *testing.T) {
	res := Track(snapWith(50, 2), nil)
	if !res.FirstSnapshot {
		t.Error("first snapshot not reported")
	}
	if len(res.Changes) != 0 || len(res.Alerts) != 0 {
		t.Errorf("first snapshot yielded changes=%d alerts=%d", len(res.Changes), len(res.Alerts))
	}
}

func TestTrack_NewAndRemovedStakeholders(t *testing.T) {
	prev := snapWith(50, 1,
		domain.ContactScore{ContactID: "old", Name: "Old Hand", Role: domain.RoleEndUser, Score: 40},
	)
	cur := snapWith(50, 1,
		domain.ContactScore{ContactID: "new", Name: "New Face", Role: domain.RoleInfluencer, Score: 30},
	)
	res := Track(cur, &prev)

	if !hasChange(res.Changes, ChangeNewStakeholder, "new") {
		t.Error("missing NEW_STAKEHOLDER for new contact")
	}
	if !hasChange(res.Changes, ChangeStakeholderRemoved, "old") {
		t.Error("missing STAKEHOLDER_REMOVED for departed contact")
	}
	// A removed contact is only ever removed, never also changed.
	for _, c := range res.Changes {
		if c.ContactKey == "old" && c.Type != ChangeStakeholderRemoved {
			t.Errorf("departed contact also reported as %s", c.Type)
		}
	}
}

func TestTrack_MatchesByEmailWhenIDMissing(t *testing.T) {
	prev := snapWith(50, 1,
		domain.ContactScore{Email: "jo@acme.test", Role: domain.RoleEndUser, Score: 50},
	)
	cur := snapWith(50, 1,
		domain.ContactScore{Email: "jo@acme.test", Role: domain.RoleEndUser, Score: 55},
	)
	res := Track(cur, &prev)
	if hasChange(res.Changes, ChangeNewStakeholder, "jo@acme.test") {
		t.Error("contact matched by email reported as new")
	}
	if hasChange(res.Changes, ChangeStakeholderRemoved, "jo@acme.test") {
		t.Error("contact matched by email reported as removed")
	}
}

func TestTrack_ChampionCoolingAlert(t *testing.T) {
	prev := snapWith(70, 2,
		domain.ContactScore{ContactID: "ch", Name: "Champ", Role: domain.RoleChampion, Score: 80},
	)
	cur := snapWith(55, 2,
		domain.ContactScore{ContactID: "ch", Name: "Champ", Role: domain.RoleChampion, Score: 50},
	)
	res := Track(cur, &prev)

	if !hasChange(res.Changes, ChangeEngagementDecreased, "ch") {
		t.Error("missing ENGAGEMENT_DECREASED")
	}
	if !hasAlert(res.Alerts, AlertChampionCooling) {
		t.Error("missing CHAMPION_COOLING alert")
	}
	if !hasChange(res.Changes, ChangeScore, "") {
		t.Error("missing SCORE_CHANGE for a 15-point overall move")
	}
}

func TestTrack_DMDisengagedRequiresLowScore(t *testing.T) {
	prev := snapWith(60, 1,
		domain.ContactScore{ContactID: "dm", Role: domain.RoleDecisionMaker, Score: 60},
	)
	// Drop of 25 but still above the disengaged floor: change, no alert.
	curAbove := snapWith(60, 1,
		domain.ContactScore{ContactID: "dm", Role: domain.RoleDecisionMaker, Score: 35},
	)
	res := Track(curAbove, &prev)
	if hasAlert(res.Alerts, AlertDMDisengaged) {
		t.Error("DM_DISENGAGED fired above the score floor")
	}

	curBelow := snapWith(60, 1,
		domain.ContactScore{ContactID: "dm", Role: domain.RoleDecisionMaker, Score: 20},
	)
	res = Track(curBelow, &prev)
	if !hasAlert(res.Alerts, AlertDMDisengaged) {
		t.Error("missing DM_DISENGAGED below the score floor")
	}
}

func TestTrack_BudgetHolderEngagedAlert(t *testing.T) {
	prev := snapWith(50, 1,
		domain.ContactScore{ContactID: "bh", Role: domain.RoleBudgetHolder, Score: 20},
	)
	cur := snapWith(58, 1,
		domain.ContactScore{ContactID: "bh", Role: domain.RoleBudgetHolder, Score: 55},
	)
	res := Track(cur, &prev)
	if !hasChange(res.Changes, ChangeEngagementIncreased, "bh") {
		t.Error("missing ENGAGEMENT_INCREASED")
	}
	if !hasAlert(res.Alerts, AlertBudgetHolderEngaged) {
		t.Error("missing BUDGET_HOLDER_ENGAGED alert")
	}
}

func TestTrack_DepthChange(t *testing.T) {
	prev := snapWith(50, 3)
	cur := snapWith(50, 2)
	res := Track(cur, &prev)
	if !hasChange(res.Changes, ChangeDepth, "") {
		t.Error("missing DEPTH_CHANGE")
	}
}

func TestTrack_StalenessAlerts(t *testing.T) {
	staleDM := now.Add(-15 * 24 * time.Hour)
	staleChamp := now.Add(-10 * 24 * time.Hour)
	freshBH := now.Add(-1 * 24 * time.Hour)

	prev := snapWith(60, 3,
		domain.ContactScore{ContactID: "dm", Role: domain.RoleDecisionMaker, Score: 50, LastEngagedAt: &staleDM},
		domain.ContactScore{ContactID: "ch", Role: domain.RoleChampion, Score: 50, LastEngagedAt: &staleChamp},
		domain.ContactScore{ContactID: "bh", Role: domain.RoleBudgetHolder, Score: 50, LastEngagedAt: &freshBH},
	)
	cur := prev // same contacts, no deltas
	res := Track(cur, &prev)

	if !hasAlert(res.Alerts, AlertDMInactive) {
		t.Error("missing DM_INACTIVE for a 15-day-idle decision maker")
	}
	if !hasAlert(res.Alerts, AlertChampionInactive) {
		t.Error("missing CHAMPION_INACTIVE for a 10-day-idle champion")
	}
	for _, a := range res.Alerts {
		if a.ContactKey == "bh" {
			t.Errorf("fresh budget holder alerted: %s", a.Type)
		}
	}
}
