package roles

import (
	"strings"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// seniorityRules are checked in order; the first tier with a matching
// pattern wins, so executive vocabulary shadows the broader tiers below it.
var seniorityRules = []struct {
	Level    domain.Seniority
	Patterns []string
}{
	{domain.SeniorityExecutive, []string{
		"chief", "ceo", "cfo", "cto", "coo", "cio", "cmo",
		"president", "founder", "owner", "managing director",
		"vice president", "vp ", "svp", "evp", "general counsel",
	}},
	{domain.SenioritySenior, []string{
		"director", "head of", "senior", "sr.", "sr ", "principal",
	}},
	{domain.SeniorityJunior, []string{
		"junior", "jr.", "jr ", "intern", "trainee", "associate", "assistant",
	}},
	{domain.SeniorityMid, []string{
		"manager", "lead", "supervisor",
	}},
}

// ClassifySeniority buckets a job title into a seniority tier from title
// text alone, independent of buying role. Empty or unmatched titles are
// UNKNOWN, never an error.
func ClassifySeniority(title string) domain.Seniority {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return domain.SeniorityUnknown
	}
	for _, tier := range seniorityRules {
		for _, p := range tier.Patterns {
			if strings.Contains(lower, p) {
				return tier.Level
			}
		}
	}
	return domain.SeniorityUnknown
}

// TitleInfluenceScore maps a champion's title to the 0–25 influence
// sub-score used by champion-strength scoring.
func TitleInfluenceScore(title string) int {
	switch ClassifySeniority(title) {
	case domain.SeniorityExecutive, domain.SenioritySenior:
		return 25
	case domain.SeniorityMid:
		return 20
	}
	lower := strings.ToLower(title)
	if strings.Contains(lower, "specialist") {
		return 15
	}
	return 10
}
