// Package scoring computes the headline multi-threading score for a deal's
// contact list: per-contact engagement, participation breadth, buying-role
// coverage, and the combined overall score with its risk band.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// Per-channel scoring weights and caps. Meetings signal the strongest
// buy-in, emails the weakest; caps keep one channel from dominating.
const (
	pointsPerMeeting = 20
	meetingCap       = 40
	pointsPerCall    = 15
	callCap          = 30
	pointsPerEmail   = 5
	emailCap         = 30
)

// Risk banding thresholds for the overall score.
const (
	lowRiskFloor    = 70
	mediumRiskFloor = 40
)

// activeThreshold is the engagement total at which a contact counts as an
// active participant.
const activeThreshold = 2

// EngagementScore scores one contact's engagement 0–100 with per-channel
// caps. Empty counters score 0, a defined state rather than an error.
func EngagementScore(e domain.EngagementCounter) int {
	meetings := capInt(e.Meetings*pointsPerMeeting, meetingCap)
	calls := capInt(e.Calls*pointsPerCall, callCap)
	emails := capInt(e.Emails*pointsPerEmail, emailCap)
	return capInt(meetings+calls+emails, 100)
}

// ParticipationScore rewards both the ratio of active contacts and the raw
// active count. No contacts scores zero.
func ParticipationScore(contacts []domain.Contact) int {
	if len(contacts) == 0 {
		return 0
	}
	active := 0
	for _, c := range contacts {
		if c.Engagement.Sum() >= activeThreshold {
			active++
		}
	}
	ratio := float64(active) / float64(len(contacts))
	score := ratio*60 + float64(capInt(active*10, 40))
	return capInt(int(math.Round(score)), 100)
}

// RoleCoverage holds the role-coverage sub-score with the covered and
// missing-key-role sets it was derived from.
type RoleCoverage struct {
	Score           int
	CoveredRoles    []domain.Role
	MissingKeyRoles []domain.Role
}

// ScoreRoleCoverage scores how well the contact list covers the buying
// roles. Key-role coverage carries 70% of the weight; role diversity adds
// up to 30 more.
func ScoreRoleCoverage(contacts []domain.Contact) RoleCoverage {
	seen := make(map[domain.Role]bool)
	for _, c := range contacts {
		role := c.EffectiveRole
		if role == "" {
			role = domain.RoleOther
		}
		seen[role] = true
	}

	covered := make([]domain.Role, 0, len(seen))
	for _, r := range domain.AllRoles() {
		if seen[r] {
			covered = append(covered, r)
		}
	}

	var missing []domain.Role
	keyCovered := 0
	for _, key := range domain.KeyRoles() {
		if seen[key] {
			keyCovered++
		} else {
			missing = append(missing, key)
		}
	}

	keyPct := float64(keyCovered) / float64(len(domain.KeyRoles())) * 100
	diversity := capInt(len(covered)*10, 30)
	score := capInt(int(math.Round(keyPct*0.7))+diversity, 100)

	return RoleCoverage{Score: score, CoveredRoles: covered, MissingKeyRoles: missing}
}

// Score produces the full snapshot for a deal's contact list. Contacts must
// already carry effective roles from the inference engine; an empty list is
// a first-class zero state (overall 0, risk HIGH).
func Score(dealID string, contacts []domain.Contact, at time.Time) domain.ScoreSnapshot {
	snap := domain.ScoreSnapshot{
		DealID:       dealID,
		TakenAt:      at,
		ContactCount: len(contacts),
	}

	if len(contacts) == 0 {
		snap.RiskLevel = domain.RiskHigh
		snap.MissingKeyRoles = domain.KeyRoles()
		return snap
	}

	engagementSum := 0
	snap.Contacts = make([]domain.ContactScore, 0, len(contacts))
	for _, c := range contacts {
		score := EngagementScore(c.Engagement)
		engagementSum += score
		if c.Engaged() {
			snap.ThreadDepth++
		}
		role := c.EffectiveRole
		if role == "" {
			role = domain.RoleOther
		}
		snap.Contacts = append(snap.Contacts, domain.ContactScore{
			ContactID:     c.ID,
			Name:          c.Name,
			Email:         c.Email,
			Role:          role,
			Score:         score,
			Emails:        c.Engagement.Emails,
			Meetings:      c.Engagement.Meetings,
			Calls:         c.Engagement.Calls,
			LastEngagedAt: c.LastEngagedAt,
		})
	}
	sort.SliceStable(snap.Contacts, func(i, j int) bool {
		return snap.Contacts[i].Score > snap.Contacts[j].Score
	})

	snap.EngagementScore = int(math.Round(float64(engagementSum) / float64(len(contacts))))
	snap.ParticipationScore = ParticipationScore(contacts)

	rc := ScoreRoleCoverage(contacts)
	snap.RoleCoverageScore = rc.Score
	snap.CoveredRoles = rc.CoveredRoles
	snap.MissingKeyRoles = rc.MissingKeyRoles

	depthBonus := capInt(snap.ThreadDepth*10, 10)
	overall := float64(snap.EngagementScore)*0.30 +
		float64(snap.ParticipationScore)*0.25 +
		float64(snap.RoleCoverageScore)*0.35 +
		float64(depthBonus)
	snap.Overall = capInt(int(math.Round(overall)), 100)
	snap.RiskLevel = BandRisk(snap.Overall, snap.ContactCount)

	return snap
}

// BandRisk maps an overall score to its risk level. Zero contacts is always
// HIGH regardless of score.
func BandRisk(overall, contactCount int) domain.RiskLevel {
	switch {
	case contactCount == 0:
		return domain.RiskHigh
	case overall >= lowRiskFloor:
		return domain.RiskLow
	case overall >= mediumRiskFloor:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
