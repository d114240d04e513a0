package domain

import "strings"

// Role identifies a contact's buying role on a deal.
type Role string

const (
	RoleDecisionMaker Role = "DECISION_MAKER"
	RoleBudgetHolder  Role = "BUDGET_HOLDER"
	RoleChampion      Role = "CHAMPION"
	RoleInfluencer    Role = "INFLUENCER"
	RoleEndUser       Role = "END_USER"
	RoleLegal         Role = "LEGAL"
	RoleProcurement   Role = "PROCUREMENT"
	RoleBlocker       Role = "BLOCKER"
	RoleOther         Role = "OTHER"
)

// AllRoles returns every buying role in the closed enum.
func AllRoles() []Role {
	return []Role{
		RoleDecisionMaker, RoleBudgetHolder, RoleChampion, RoleInfluencer,
		RoleEndUser, RoleLegal, RoleProcurement, RoleBlocker, RoleOther,
	}
}

// KeyRoles are the three roles considered essential for a well-covered deal.
func KeyRoles() []Role {
	return []Role{RoleDecisionMaker, RoleBudgetHolder, RoleChampion}
}

// roleWeights are the fixed importance weights used by role-coverage scoring.
var roleWeights = map[Role]int{
	RoleDecisionMaker: 30,
	RoleBudgetHolder:  25,
	RoleChampion:      25,
	RoleInfluencer:    15,
	RoleEndUser:       10,
	RoleLegal:         10,
	RoleProcurement:   10,
	RoleBlocker:       5,
	RoleOther:         5,
}

// Weight returns the role's fixed importance weight. Unknown roles weigh
// the same as OTHER.
func (r Role) Weight() int {
	if w, ok := roleWeights[r]; ok {
		return w
	}
	return roleWeights[RoleOther]
}

// IsKey reports whether the role is one of the three key roles.
func (r Role) IsKey() bool {
	return r == RoleDecisionMaker || r == RoleBudgetHolder || r == RoleChampion
}

// IsExecutiveTier reports whether the role sits at the economic-authority tier.
func (r Role) IsExecutiveTier() bool {
	return r == RoleDecisionMaker || r == RoleBudgetHolder
}

// inferencePriority is the explicit total ordering used to break ties when
// several title categories match with equal weight. Higher rank wins.
// Adding a role without a rank leaves it at the bottom, never mis-ordered.
var inferencePriority = map[Role]int{
	RoleEndUser:       1,
	RoleInfluencer:    2,
	RoleChampion:      3,
	RoleBudgetHolder:  4,
	RoleDecisionMaker: 5,
	RoleLegal:         6,
	RoleProcurement:   7,
}

// InferenceRank returns the tie-break rank for title-based role inference.
func (r Role) InferenceRank() int {
	return inferencePriority[r]
}

// ParseRole maps a raw CRM role string to the closed enum. Placeholder
// values ("", "none", "unknown", "n/a") and anything unrecognized map to
// (RoleOther, false); the boolean reports whether the input named a real role.
func ParseRole(raw string) (Role, bool) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	switch norm {
	case "", "NONE", "UNKNOWN", "N/A":
		return RoleOther, false
	}
	for _, r := range AllRoles() {
		if norm == string(r) {
			return r, true
		}
	}
	return RoleOther, false
}

// Seniority classifies a contact's title level, independent of buying role.
type Seniority string

const (
	SeniorityExecutive Seniority = "EXECUTIVE"
	SenioritySenior    Seniority = "SENIOR"
	SeniorityMid       Seniority = "MID"
	SeniorityJunior    Seniority = "JUNIOR"
	SeniorityUnknown   Seniority = "UNKNOWN"
)
