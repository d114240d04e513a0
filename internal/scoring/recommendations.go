package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// RecommendationType identifies one recommendation rule.
type RecommendationType string

const (
	RecSingleThreadRisk RecommendationType = "SINGLE_THREAD_RISK"
	RecMissingKeyRoles  RecommendationType = "MISSING_KEY_ROLES"
	RecLowEngagement    RecommendationType = "LOW_ENGAGEMENT"
	RecNoChampion       RecommendationType = "NO_CHAMPION"
	RecStrongPosition   RecommendationType = "STRONG_POSITION"
	RecCriticalGap      RecommendationType = "CRITICAL_GAP"
)

// Recommendation is one prioritized action item derived from a snapshot.
type Recommendation struct {
	Type     RecommendationType `json:"type"`
	Priority domain.Priority    `json:"priority"`
	Message  string             `json:"message"`
	Action   string             `json:"action"`
}

// lowEngagementFloor marks contacts whose engagement score needs attention.
const lowEngagementFloor = 30

// Recommend derives prioritized recommendations from a snapshot. Pure
// function of the snapshot; ordering is stable within each priority tier.
func Recommend(snap domain.ScoreSnapshot) []Recommendation {
	var recs []Recommendation

	if snap.ContactCount <= 1 {
		recs = append(recs, Recommendation{
			Type:     RecSingleThreadRisk,
			Priority: domain.PriorityHigh,
			Message:  "Deal is single-threaded: only one stakeholder is engaged.",
			Action:   "Ask your contact for introductions to other stakeholders on the buying team.",
		})
	}

	if len(snap.MissingKeyRoles) > 0 {
		names := make([]string, len(snap.MissingKeyRoles))
		for i, r := range snap.MissingKeyRoles {
			names[i] = string(r)
		}
		recs = append(recs, Recommendation{
			Type:     RecMissingKeyRoles,
			Priority: domain.PriorityHigh,
			Message:  fmt.Sprintf("Key buying roles are not covered: %s.", strings.Join(names, ", ")),
			Action:   "Map the buying committee and get introductions to the missing roles.",
		})
	}

	var lowNames []string
	for _, cs := range snap.Contacts {
		if cs.Score < lowEngagementFloor {
			name := cs.Name
			if name == "" {
				name = cs.Email
			}
			lowNames = append(lowNames, name)
		}
	}
	if len(lowNames) > 0 {
		recs = append(recs, Recommendation{
			Type:     RecLowEngagement,
			Priority: domain.PriorityMedium,
			Message:  fmt.Sprintf("Low engagement from: %s.", strings.Join(lowNames, ", ")),
			Action:   "Schedule touchpoints with under-engaged stakeholders before they go cold.",
		})
	}

	if !snap.HasRole(domain.RoleChampion) && snap.ContactCount > 0 {
		recs = append(recs, Recommendation{
			Type:     RecNoChampion,
			Priority: domain.PriorityMedium,
			Message:  "No champion identified on this deal.",
			Action:   "Identify and develop an internal advocate who will sell on your behalf.",
		})
	}

	if snap.Overall >= 70 && snap.ContactCount >= 3 {
		recs = append(recs, Recommendation{
			Type:     RecStrongPosition,
			Priority: domain.PriorityLow,
			Message:  "Strong multi-threaded position. Maintain the current cadence.",
			Action:   "Keep regular touchpoints with all covered roles through close.",
		})
	}

	if snap.Overall < 40 {
		recs = append(recs, Recommendation{
			Type:     RecCriticalGap,
			Priority: domain.PriorityHigh,
			Message:  fmt.Sprintf("Critical coverage gap: overall score is %d.", snap.Overall),
			Action:   "Treat stakeholder coverage as the top priority for this deal this week.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	return recs
}
