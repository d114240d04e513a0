// Package lifecycle diffs time-ordered score snapshots to surface
// stakeholder churn, engagement swings, and threshold-crossing alerts, and
// rate-limits repeated alerts per (deal, alert-type) pair.
package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/dealthread-monitor/internal/domain"
)

// ChangeType identifies one kind of snapshot-to-snapshot change.
type ChangeType string

const (
	ChangeNewStakeholder      ChangeType = "NEW_STAKEHOLDER"
	ChangeStakeholderRemoved  ChangeType = "STAKEHOLDER_REMOVED"
	ChangeEngagementDecreased ChangeType = "ENGAGEMENT_DECREASED"
	ChangeEngagementIncreased ChangeType = "ENGAGEMENT_INCREASED"
	ChangeScore               ChangeType = "SCORE_CHANGE"
	ChangeDepth               ChangeType = "DEPTH_CHANGE"
)

// AlertType identifies one kind of lifecycle alert. Each type has a
// configured throttle cool-down.
type AlertType string

const (
	AlertChampionCooling     AlertType = "CHAMPION_COOLING"
	AlertDMDisengaged        AlertType = "DM_DISENGAGED"
	AlertBudgetHolderEngaged AlertType = "BUDGET_HOLDER_ENGAGED"
	AlertDMInactive          AlertType = "DM_INACTIVE"
	AlertChampionInactive    AlertType = "CHAMPION_INACTIVE"
)

// AllAlertTypes returns every lifecycle alert type.
func AllAlertTypes() []AlertType {
	return []AlertType{
		AlertChampionCooling, AlertDMDisengaged, AlertBudgetHolderEngaged,
		AlertDMInactive, AlertChampionInactive,
	}
}

// Change is one detected snapshot-to-snapshot difference.
type Change struct {
	Type       ChangeType `json:"type"`
	ContactKey string     `json:"contact_key,omitempty"`
	Contact    string     `json:"contact,omitempty"`
	Delta      int        `json:"delta,omitempty"`
	Detail     string     `json:"detail"`
}

// Alert is one threshold-crossing event ready for throttling and delivery.
type Alert struct {
	ID             string          `json:"id"`
	Type           AlertType       `json:"type"`
	Severity       domain.Priority `json:"severity"`
	DealID         string          `json:"deal_id"`
	ContactKey     string          `json:"contact_key,omitempty"`
	Message        string          `json:"message"`
	Recommendation string          `json:"recommendation"`
}

// ThrottleKey returns the (dealId, alertType) pair the throttle keys on.
func (a Alert) ThrottleKey() string {
	return ThrottleKey(a.DealID, a.Type)
}

// Result is the lifecycle diff output for one deal.
type Result struct {
	FirstSnapshot bool     `json:"first_snapshot"`
	Changes       []Change `json:"changes,omitempty"`
	Alerts        []Alert  `json:"alerts,omitempty"`
}

// Thresholds for change and staleness detection.
const (
	engagementDeltaThreshold = 20
	overallDeltaThreshold    = 10
	dmDisengagedFloor        = 30
	dmStaleDays              = 14
	championStaleDays        = 9
)

// Track diffs the current snapshot against the previous one. The caller
// supplies snapshots already ordered in time; previous == nil means this is
// the first observation and yields no changes or alerts.
func Track(current domain.ScoreSnapshot, previous *domain.ScoreSnapshot) Result {
	if previous == nil {
		return Result{FirstSnapshot: true}
	}

	var res Result
	prevByKey := make(map[string]domain.ContactScore, len(previous.Contacts))
	for _, cs := range previous.Contacts {
		prevByKey[cs.Key()] = cs
	}
	seen := make(map[string]bool, len(current.Contacts))

	for _, cur := range current.Contacts {
		key := cur.Key()
		seen[key] = true
		prev, existed := prevByKey[key]
		if !existed {
			res.Changes = append(res.Changes, Change{
				Type:       ChangeNewStakeholder,
				ContactKey: key,
				Contact:    displayName(cur),
				Detail:     fmt.Sprintf("%s joined the deal as %s", displayName(cur), cur.Role),
			})
			continue
		}

		delta := cur.Score - prev.Score
		switch {
		case delta <= -engagementDeltaThreshold:
			res.Changes = append(res.Changes, Change{
				Type:       ChangeEngagementDecreased,
				ContactKey: key,
				Contact:    displayName(cur),
				Delta:      delta,
				Detail:     fmt.Sprintf("%s engagement fell %d points (%d → %d)", displayName(cur), -delta, prev.Score, cur.Score),
			})
			if cur.Role == domain.RoleChampion {
				res.Alerts = append(res.Alerts, newAlert(current.DealID, AlertChampionCooling, domain.PriorityHigh, key,
					fmt.Sprintf("Champion %s is cooling off: engagement fell %d points.", displayName(cur), -delta),
					"Reach out directly and re-confirm the champion's commitment."))
			}
			if cur.Role == domain.RoleDecisionMaker && cur.Score < dmDisengagedFloor {
				res.Alerts = append(res.Alerts, newAlert(current.DealID, AlertDMDisengaged, domain.PriorityHigh, key,
					fmt.Sprintf("Decision maker %s has disengaged (score %d).", displayName(cur), cur.Score),
					"Use the champion to get back on the decision maker's calendar."))
			}
		case delta >= engagementDeltaThreshold:
			res.Changes = append(res.Changes, Change{
				Type:       ChangeEngagementIncreased,
				ContactKey: key,
				Contact:    displayName(cur),
				Delta:      delta,
				Detail:     fmt.Sprintf("%s engagement rose %d points (%d → %d)", displayName(cur), delta, prev.Score, cur.Score),
			})
			if cur.Role == domain.RoleBudgetHolder {
				res.Alerts = append(res.Alerts, newAlert(current.DealID, AlertBudgetHolderEngaged, domain.PriorityLow, key,
					fmt.Sprintf("Budget holder %s is leaning in: engagement rose %d points.", displayName(cur), delta),
					"Capitalize now: put pricing and commercial next steps in front of them."))
			}
		}
	}

	for _, prev := range previous.Contacts {
		if !seen[prev.Key()] {
			res.Changes = append(res.Changes, Change{
				Type:       ChangeStakeholderRemoved,
				ContactKey: prev.Key(),
				Contact:    displayName(prev),
				Detail:     fmt.Sprintf("%s (%s) is no longer on the deal", displayName(prev), prev.Role),
			})
		}
	}

	if delta := current.Overall - previous.Overall; abs(delta) >= overallDeltaThreshold {
		res.Changes = append(res.Changes, Change{
			Type:   ChangeScore,
			Delta:  delta,
			Detail: fmt.Sprintf("overall score moved %+d (%d → %d)", delta, previous.Overall, current.Overall),
		})
	}
	if delta := current.ThreadDepth - previous.ThreadDepth; delta != 0 {
		res.Changes = append(res.Changes, Change{
			Type:   ChangeDepth,
			Delta:  delta,
			Detail: fmt.Sprintf("thread depth moved %+d (%d → %d)", delta, previous.ThreadDepth, current.ThreadDepth),
		})
	}

	res.Alerts = append(res.Alerts, stalenessAlerts(current)...)
	return res
}

// stalenessAlerts flags key-role contacts who have gone quiet, measured
// against the snapshot's own timestamp so results are reproducible.
func stalenessAlerts(snap domain.ScoreSnapshot) []Alert {
	var alerts []Alert
	for _, cs := range snap.Contacts {
		if cs.LastEngagedAt == nil {
			continue
		}
		idleDays := int(snap.TakenAt.Sub(*cs.LastEngagedAt).Hours() / 24)
		switch {
		case cs.Role == domain.RoleDecisionMaker && idleDays >= dmStaleDays:
			alerts = append(alerts, newAlert(snap.DealID, AlertDMInactive, domain.PriorityHigh, cs.Key(),
				fmt.Sprintf("Decision maker %s has been inactive for %d days.", displayName(cs), idleDays),
				"Escalate through the champion or send an executive-level touchpoint."))
		case cs.Role == domain.RoleChampion && idleDays >= championStaleDays:
			alerts = append(alerts, newAlert(snap.DealID, AlertChampionInactive, domain.PriorityMedium, cs.Key(),
				fmt.Sprintf("Champion %s has been quiet for %d days.", displayName(cs), idleDays),
				"Check in with something of value: new collateral, a relevant intro, a pilot result."))
		}
	}
	return alerts
}

func newAlert(dealID string, t AlertType, sev domain.Priority, contactKey, msg, rec string) Alert {
	return Alert{
		ID:             uuid.NewString(),
		Type:           t,
		Severity:       sev,
		DealID:         dealID,
		ContactKey:     contactKey,
		Message:        msg,
		Recommendation: rec,
	}
}

func displayName(cs domain.ContactScore) string {
	if cs.Name != "" {
		return cs.Name
	}
	if cs.Email != "" {
		return cs.Email
	}
	return cs.ContactID
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
