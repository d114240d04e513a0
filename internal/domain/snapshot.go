package domain

import "time"

// RiskLevel bands a score into LOW / MEDIUM / HIGH.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Priority orders recommendations and checklist items.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// priorityRank gives HIGH the lowest sort key so HIGH items come first.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Rank returns the sort key for a priority (HIGH first).
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 3
}

// ContactScore is the per-contact engagement breakdown inside a snapshot.
type ContactScore struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Score     int    `json:"score"`

	Emails   int `json:"emails"`
	Meetings int `json:"meetings"`
	Calls    int `json:"calls"`

	LastEngagedAt *time.Time `json:"last_engaged_at,omitempty"`
}

// ScoreSnapshot is the scoring engine's output for one deal at one moment.
// Immutable value; the lifecycle tracker diffs two time-ordered snapshots.
type ScoreSnapshot struct {
	DealID    string    `json:"deal_id,omitempty"`
	TakenAt   time.Time `json:"taken_at"`
	Overall   int       `json:"overall"`
	RiskLevel RiskLevel `json:"risk_level"`

	EngagementScore    int `json:"engagement_score"`
	ParticipationScore int `json:"participation_score"`
	RoleCoverageScore  int `json:"role_coverage_score"`

	ContactCount int `json:"contact_count"`
	ThreadDepth  int `json:"thread_depth"`

	CoveredRoles    []Role `json:"covered_roles"`
	MissingKeyRoles []Role `json:"missing_key_roles"`

	Contacts []ContactScore `json:"contacts"`
}

// HasRole reports whether the snapshot's covered-role set contains r.
func (s ScoreSnapshot) HasRole(r Role) bool {
	for _, cr := range s.CoveredRoles {
		if cr == r {
			return true
		}
	}
	return false
}

// Key returns the stable cross-snapshot identifier for the contact line:
// the contact id, falling back to the email address.
func (cs ContactScore) Key() string {
	if cs.ContactID != "" {
		return cs.ContactID
	}
	return cs.Email
}

// ContactByKey returns the per-contact breakdown matching the stable key
// (contact id, email fallback), or nil.
func (s ScoreSnapshot) ContactByKey(key string) *ContactScore {
	for i := range s.Contacts {
		if s.Contacts[i].Key() == key {
			return &s.Contacts[i]
		}
	}
	return nil
}
