package coverage

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// EngagementLevel labels a role group's depth score.
type EngagementLevel string

const (
	LevelNone   EngagementLevel = "NONE"
	LevelLow    EngagementLevel = "LOW"
	LevelMedium EngagementLevel = "MEDIUM"
	LevelHigh   EngagementLevel = "HIGH"
)

// levelFor maps a depth score to its label.
func levelFor(depth int) EngagementLevel {
	switch {
	case depth <= 0:
		return LevelNone
	case depth < 40:
		return LevelLow
	case depth < 70:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// RoleDepth is the engagement-depth breakdown for one covered role.
type RoleDepth struct {
	Role           domain.Role     `json:"role"`
	ContactCount   int             `json:"contact_count"`
	FrequencyScore int             `json:"frequency_score"`
	RecencyScore   int             `json:"recency_score"`
	DepthScore     int             `json:"depth_score"`
	Level          EngagementLevel `json:"level"`
}

// ChecklistItem is one entry in the "what's missing" checklist.
type ChecklistItem struct {
	Priority domain.Priority `json:"priority"`
	Message  string          `json:"message"`
}

// Analysis is the full coverage analysis for one deal.
type Analysis struct {
	DealStage        string           `json:"deal_stage"`
	BreadthScore     int              `json:"breadth_score"`
	DepthScore       int              `json:"depth_score"`
	CoverageScore    int              `json:"coverage_score"`
	Threshold        int              `json:"threshold"`
	MeetsExpectation bool             `json:"meets_expectation"`
	Expectation      StageExpectation `json:"expectation"`

	RoleGroups    map[domain.Role][]domain.Contact `json:"-"`
	RoleDepths    []RoleDepth                      `json:"role_depths"`
	StrongestRole domain.Role                      `json:"strongest_role,omitempty"`
	WeakestRole   domain.Role                      `json:"weakest_role,omitempty"`

	Checklist []ChecklistItem `json:"checklist"`
	Champion  ChampionReport  `json:"champion"`
}

// Analyze computes breadth, depth, and the combined coverage verdict for a
// deal's contacts against its stage expectations. Contacts must carry
// effective roles. An empty contact list yields all-zero scores.
func Analyze(contacts []domain.Contact, dealStage string, now time.Time) Analysis {
	exp := ExpectationForStage(dealStage)
	groups := groupByRole(contacts)

	a := Analysis{
		DealStage:   dealStage,
		Expectation: exp,
		RoleGroups:  groups,
		Threshold:   exp.AdjustedThreshold(),
	}

	a.BreadthScore = breadthScore(groups, exp)
	a.RoleDepths = roleDepths(groups, now)
	a.DepthScore = overallDepth(a.RoleDepths)
	a.StrongestRole, a.WeakestRole = extremeRoles(a.RoleDepths)
	a.CoverageScore = int(math.Round(float64(a.BreadthScore)*0.5 + float64(a.DepthScore)*0.5))
	a.MeetsExpectation = a.CoverageScore >= a.Threshold
	a.Checklist = buildChecklist(groups, a.RoleDepths, exp)
	a.Champion = AssessChampion(groups[domain.RoleChampion], ChampionInputs{})

	return a
}

func groupByRole(contacts []domain.Contact) map[domain.Role][]domain.Contact {
	groups := make(map[domain.Role][]domain.Contact)
	for _, c := range contacts {
		role := c.EffectiveRole
		if role == "" {
			role = domain.RoleOther
		}
		groups[role] = append(groups[role], c)
	}
	return groups
}

// breadthScore grades required-role coverage (80% of the weight) plus a
// diversity bonus for roles covered beyond the required set.
func breadthScore(groups map[domain.Role][]domain.Contact, exp StageExpectation) int {
	coveredRequired := 0
	for _, r := range exp.RequiredRoles {
		if len(groups[r]) > 0 {
			coveredRequired++
		}
	}

	requiredCoverage := 100.0
	if len(exp.RequiredRoles) > 0 {
		requiredCoverage = float64(coveredRequired) / float64(len(exp.RequiredRoles)) * 100
	}

	diversity := (len(groups) - coveredRequired) * 5
	if diversity < 0 {
		diversity = 0
	}
	if diversity > 20 {
		diversity = 20
	}

	score := int(math.Round(requiredCoverage*0.8)) + diversity
	if score > 100 {
		score = 100
	}
	return score
}

// RecencyScore is a step function of last-engagement age: full credit
// within a week, decaying to 20 beyond two months, 0 when unknown.
func RecencyScore(lastEngagedAt *time.Time, now time.Time) int {
	if lastEngagedAt == nil || lastEngagedAt.IsZero() {
		return 0
	}
	age := now.Sub(*lastEngagedAt)
	switch {
	case age <= 7*24*time.Hour:
		return 100
	case age <= 14*24*time.Hour:
		return 80
	case age <= 30*24*time.Hour:
		return 60
	case age <= 60*24*time.Hour:
		return 40
	default:
		return 20
	}
}

func roleDepths(groups map[domain.Role][]domain.Contact, now time.Time) []RoleDepth {
	depths := make([]RoleDepth, 0, len(groups))
	for role, members := range groups {
		freqSum, recSum := 0, 0
		for _, c := range members {
			freq := c.Engagement.Sum() * 10
			if freq > 100 {
				freq = 100
			}
			freqSum += freq
			recSum += RecencyScore(c.LastEngagedAt, now)
		}
		n := len(members)
		freq := int(math.Round(float64(freqSum) / float64(n)))
		rec := int(math.Round(float64(recSum) / float64(n)))
		depth := int(math.Round(float64(freq)*0.6 + float64(rec)*0.4))
		depths = append(depths, RoleDepth{
			Role:           role,
			ContactCount:   n,
			FrequencyScore: freq,
			RecencyScore:   rec,
			DepthScore:     depth,
			Level:          levelFor(depth),
		})
	}
	sort.Slice(depths, func(i, j int) bool {
		if depths[i].DepthScore != depths[j].DepthScore {
			return depths[i].DepthScore > depths[j].DepthScore
		}
		return depths[i].Role < depths[j].Role
	})
	return depths
}

func overallDepth(depths []RoleDepth) int {
	if len(depths) == 0 {
		return 0
	}
	sum := 0
	for _, d := range depths {
		sum += d.DepthScore
	}
	return int(math.Round(float64(sum) / float64(len(depths))))
}

func extremeRoles(depths []RoleDepth) (strongest, weakest domain.Role) {
	if len(depths) == 0 {
		return "", ""
	}
	// depths is sorted strongest-first.
	return depths[0].Role, depths[len(depths)-1].Role
}

// buildChecklist emits the prioritized "what's missing" items: required
// gaps first, then recommended gaps, shallow key roles, and the executive
// and budget checks.
func buildChecklist(groups map[domain.Role][]domain.Contact, depths []RoleDepth, exp StageExpectation) []ChecklistItem {
	var items []ChecklistItem

	for _, r := range exp.RequiredRoles {
		if len(groups[r]) == 0 {
			items = append(items, ChecklistItem{
				Priority: domain.PriorityHigh,
				Message:  fmt.Sprintf("Required role %s is not covered at stage %q.", r, exp.Stage),
			})
		}
	}
	for _, r := range exp.RecommendedRoles {
		if len(groups[r]) == 0 {
			items = append(items, ChecklistItem{
				Priority: domain.PriorityMedium,
				Message:  fmt.Sprintf("Recommended role %s is not covered.", r),
			})
		}
	}
	for _, d := range depths {
		if d.Role.IsKey() && d.Level == LevelLow {
			items = append(items, ChecklistItem{
				Priority: domain.PriorityMedium,
				Message:  fmt.Sprintf("Engagement with %s is shallow (depth %d).", d.Role, d.DepthScore),
			})
		}
	}

	hasExecutiveTier := len(groups[domain.RoleDecisionMaker]) > 0 || len(groups[domain.RoleBudgetHolder]) > 0
	if !hasExecutiveTier {
		items = append(items, ChecklistItem{
			Priority: domain.PriorityHigh,
			Message:  "No executive-tier stakeholder (DECISION_MAKER or BUDGET_HOLDER) is covered.",
		})
	}
	if len(groups[domain.RoleBudgetHolder]) == 0 {
		items = append(items, ChecklistItem{
			Priority: domain.PriorityMedium,
			Message:  "No BUDGET_HOLDER identified; economic buy-in is unverified.",
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.Rank() < items[j].Priority.Rank()
	})
	return items
}
