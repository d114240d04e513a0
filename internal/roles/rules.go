// Package roles infers a contact's buying role from title text, engagement
// shape, and communication language, and classifies title seniority.
package roles

import (
	"strings"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// TitleRule is one declarative title pattern: a lowercase substring and the
// score it contributes to its role when matched.
type TitleRule struct {
	Pattern string
	Weight  int
}

// titleRules maps each role to its ordered pattern list. Matching is plain
// lowercase substring; the table is data, the matcher is generic.
var titleRules = map[domain.Role][]TitleRule{
	domain.RoleDecisionMaker: {
		{"chief executive", 95}, {"ceo", 95}, {"president", 90},
		{"founder", 90}, {"owner", 85}, {"managing director", 85},
		{"general manager", 75}, {"vice president", 80}, {"vp ", 80},
		{"svp", 80}, {"evp", 80}, {"head of", 70}, {"director", 65},
		{"chief", 80},
	},
	domain.RoleBudgetHolder: {
		{"chief financial", 95}, {"cfo", 95}, {"finance", 80},
		{"financial", 75}, {"controller", 75}, {"treasurer", 75},
		{"budget", 70}, {"accounting", 60},
	},
	domain.RoleChampion: {
		{"program manager", 65}, {"project manager", 65},
		{"product manager", 65}, {"team lead", 60}, {"manager", 55},
		{"lead", 50}, {"principal", 55},
	},
	domain.RoleInfluencer: {
		{"architect", 65}, {"consultant", 60}, {"advisor", 60},
		{"analyst", 55}, {"strategist", 55}, {"evangelist", 55},
	},
	domain.RoleEndUser: {
		{"engineer", 55}, {"developer", 55}, {"specialist", 50},
		{"coordinator", 50}, {"administrator", 50}, {"technician", 50},
		{"representative", 45}, {"associate", 45}, {"assistant", 40},
		{"operator", 45}, {"support", 45},
	},
	domain.RoleLegal: {
		{"general counsel", 90}, {"legal", 80}, {"counsel", 75},
		{"attorney", 75}, {"compliance", 65}, {"paralegal", 60},
	},
	domain.RoleProcurement: {
		{"procurement", 90}, {"purchasing", 85}, {"sourcing", 75},
		{"vendor management", 70}, {"buyer", 65}, {"supply chain", 55},
	},
}

// financeVocabulary triggers the budget-authority override: when any of
// these co-occur in a title that also matched BUDGET_HOLDER or PROCUREMENT,
// that category wins even over a higher-priority match. Heuristic: titles
// mixing executive and finance vocabulary ("Chief Financial Officer") land
// correctly, but ambiguous combinations may be mis-ranked; kept as-is
// pending validation against real title data.
var financeVocabulary = []string{"cfo", "finance", "budget", "procurement", "purchasing"}

// LanguageRule is one free-text vocabulary pattern for a role.
type LanguageRule struct {
	Pattern string
	Weight  int
}

// languageRules maps communication-text vocabulary to role leans.
var languageRules = map[domain.Role][]LanguageRule{
	domain.RoleBudgetHolder: {
		{"budget", 60}, {"approve", 55}, {"approval", 55}, {"sign off", 55},
		{"pricing", 50}, {"cost", 45}, {"invoice", 45}, {"contract value", 50},
	},
	domain.RoleChampion: {
		{"love this", 60}, {"excited", 55}, {"advocate", 60},
		{"pitch internally", 60}, {"convince", 55}, {"my team needs", 50},
		{"pushing for", 55},
	},
	domain.RoleEndUser: {
		{"how do i", 55}, {"how to", 50}, {"tutorial", 50},
		{"documentation", 45}, {"workflow", 45}, {"daily use", 50},
		{"feature request", 45},
	},
}

// advocacyIndicators are the champion-language markers counted by the
// coverage analyzer's champion-strength model.
var advocacyIndicators = []string{
	"advocate", "champion", "love", "excited", "pushing for",
	"recommend", "convince", "internally",
}

// CountAdvocacyIndicators returns how many distinct advocacy markers appear
// in the given communication text.
func CountAdvocacyIndicators(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, ind := range advocacyIndicators {
		if strings.Contains(lower, ind) {
			n++
		}
	}
	return n
}

// matchTitle scores every role's title rules against a lowercased title.
// Each role contributes its single best-matching pattern weight.
func matchTitle(lowerTitle string) map[domain.Role]int {
	scores := make(map[domain.Role]int)
	for role, rules := range titleRules {
		best := 0
		for _, rule := range rules {
			if strings.Contains(lowerTitle, rule.Pattern) && rule.Weight > best {
				best = rule.Weight
			}
		}
		if best > 0 {
			scores[role] = best
		}
	}
	return scores
}

// matchLanguage scores every role's language rules against lowercased text.
// Weights accumulate per matched pattern, capped at 100.
func matchLanguage(lowerText string) map[domain.Role]int {
	scores := make(map[domain.Role]int)
	for role, rules := range languageRules {
		total := 0
		for _, rule := range rules {
			if strings.Contains(lowerText, rule.Pattern) {
				total += rule.Weight
			}
		}
		if total > 100 {
			total = 100
		}
		if total > 0 {
			scores[role] = total
		}
	}
	return scores
}

func containsFinanceVocabulary(lowerTitle string) bool {
	for _, kw := range financeVocabulary {
		if strings.Contains(lowerTitle, kw) {
			return true
		}
	}
	return false
}
