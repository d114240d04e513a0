package roles

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// Signal source weights. Title text is the strongest indicator, observed
// behavior next, free-text language the weakest.
const (
	weightTitle    = 1.5
	weightBehavior = 1.0
	weightLanguage = 0.8
)

// Inferred roles never reach the 100 reserved for explicit CRM roles.
const maxInferredConfidence = 95

// Source identifies where an effective role came from.
const (
	SourceExplicit = "explicit"
	SourceTitle    = "title"
	SourceBehavior = "behavior"
	SourceLanguage = "language"
	SourceNone     = "none"
)

// Aux carries the deal-level context inference needs beyond the contact
// itself. The zero value is valid: missing context simply mutes the
// behavior signals that depend on it.
type Aux struct {
	DealStage string
	Now       time.Time
}

func (a Aux) now() time.Time {
	if a.Now.IsZero() {
		return time.Now()
	}
	return a.Now
}

// Contribution is one triggered signal feeding the combined verdict.
type Contribution struct {
	Role   domain.Role `json:"role"`
	Source string      `json:"source"`
	Score  int         `json:"score"`
}

// Inference is the role inference result for one contact.
type Inference struct {
	Role       domain.Role    `json:"role"`
	Confidence int            `json:"confidence"`
	Source     string         `json:"source"`
	Signals    []Contribution `json:"signals,omitempty"`
}

// InferRole determines a contact's buying role. An explicit, non-placeholder
// CRM role always wins with confidence 100. Otherwise title, behavior, and
// language signals are combined with source weights; no signals at all
// yields OTHER with confidence 0.
func InferRole(c domain.Contact, aux Aux) Inference {
	if role, ok := domain.ParseRole(c.ExplicitRole); ok {
		return Inference{Role: role, Confidence: 100, Source: SourceExplicit}
	}

	var signals []Contribution
	if role, score, ok := titleSignal(c.Title); ok {
		signals = append(signals, Contribution{Role: role, Source: SourceTitle, Score: score})
	}
	signals = append(signals, behaviorSignals(c, aux)...)
	signals = append(signals, languageSignals(c.Notes)...)

	if len(signals) == 0 {
		return Inference{Role: domain.RoleOther, Confidence: 0, Source: SourceNone}
	}

	winner, confidence := combine(signals)
	return Inference{
		Role:       winner,
		Confidence: confidence,
		Source:     dominantSource(signals, winner),
		Signals:    signals,
	}
}

// titleSignal picks the single best title category. Ties on weight are
// broken by the explicit inference priority ranking, and the finance
// override promotes BUDGET_HOLDER / PROCUREMENT matches whenever finance
// vocabulary co-occurs in the title.
func titleSignal(title string) (domain.Role, int, bool) {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return domain.RoleOther, 0, false
	}
	scores := matchTitle(lower)
	if len(scores) == 0 {
		return domain.RoleOther, 0, false
	}

	if containsFinanceVocabulary(lower) {
		bh, hasBH := scores[domain.RoleBudgetHolder]
		pr, hasPR := scores[domain.RoleProcurement]
		switch {
		case hasBH && hasPR:
			if pr > bh || (pr == bh && domain.RoleProcurement.InferenceRank() > domain.RoleBudgetHolder.InferenceRank()) {
				return domain.RoleProcurement, pr, true
			}
			return domain.RoleBudgetHolder, bh, true
		case hasBH:
			return domain.RoleBudgetHolder, bh, true
		case hasPR:
			return domain.RoleProcurement, pr, true
		}
	}

	best := domain.RoleOther
	bestScore := 0
	for role, score := range scores {
		if score > bestScore ||
			(score == bestScore && role.InferenceRank() > best.InferenceRank()) {
			best, bestScore = role, score
		}
	}
	return best, bestScore, true
}

// behaviorSignals reads role leans out of the engagement shape.
func behaviorSignals(c domain.Contact, aux Aux) []Contribution {
	var out []Contribution
	eng := c.Engagement
	total := eng.Sum()
	now := aux.now()

	// Late-stage deal, first touch recent, only one or two meetings:
	// the pattern of an executive pulled in to sign off.
	if domain.StageOrder(aux.DealStage) >= 4 &&
		eng.Meetings >= 1 && eng.Meetings <= 2 &&
		c.FirstEngagedAt != nil && now.Sub(*c.FirstEngagedAt) <= 30*24*time.Hour {
		out = append(out, Contribution{Role: domain.RoleDecisionMaker, Source: SourceBehavior, Score: 70})
	}

	// Heavy sustained engagement across channels reads as a champion.
	if total >= 10 && eng.Meetings >= 3 {
		out = append(out, Contribution{Role: domain.RoleChampion, Source: SourceBehavior, Score: 75})
	}

	// Email-heavy with at most one meeting reads as an end user.
	if eng.Emails >= 5 && eng.Meetings <= 1 && eng.Emails > eng.Calls {
		out = append(out, Contribution{Role: domain.RoleEndUser, Source: SourceBehavior, Score: 60})
	}

	// Early and frequent engagement reads as an influencer shaping the
	// evaluation from the start.
	if total >= 8 && c.FirstEngagedAt != nil && now.Sub(*c.FirstEngagedAt) >= 30*24*time.Hour {
		out = append(out, Contribution{Role: domain.RoleInfluencer, Source: SourceBehavior, Score: 60})
	}

	return out
}

// languageSignals reads role leans out of free communication text.
func languageSignals(notes string) []Contribution {
	lower := strings.ToLower(strings.TrimSpace(notes))
	if lower == "" {
		return nil
	}
	scores := matchLanguage(lower)
	out := make([]Contribution, 0, len(scores))
	for role, score := range scores {
		out = append(out, Contribution{Role: role, Source: SourceLanguage, Score: score})
	}
	// Map iteration order is random; keep output deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

func sourceWeight(source string) float64 {
	switch source {
	case SourceTitle:
		return weightTitle
	case SourceBehavior:
		return weightBehavior
	case SourceLanguage:
		return weightLanguage
	}
	return 0
}

// combine sums weighted signal scores per candidate role, picks the highest
// (inference-rank tie-break), and derives confidence as the weighted average
// of the winner's signal scores, capped below explicit certainty.
func combine(signals []Contribution) (domain.Role, int) {
	weighted := make(map[domain.Role]float64)
	for _, s := range signals {
		weighted[s.Role] += sourceWeight(s.Source) * float64(s.Score)
	}

	winner := domain.RoleOther
	best := -1.0
	for role, score := range weighted {
		if score > best ||
			(score == best && role.InferenceRank() > winner.InferenceRank()) {
			winner, best = role, score
		}
	}

	var weightSum float64
	for _, s := range signals {
		if s.Role == winner {
			weightSum += sourceWeight(s.Source)
		}
	}
	confidence := 0
	if weightSum > 0 {
		confidence = int(math.Round(weighted[winner] / weightSum))
	}
	if confidence > maxInferredConfidence {
		confidence = maxInferredConfidence
	}
	return winner, confidence
}

// dominantSource returns the highest-weighted source that voted for the
// winning role.
func dominantSource(signals []Contribution, winner domain.Role) string {
	best := SourceNone
	bestWeight := 0.0
	for _, s := range signals {
		if s.Role == winner && sourceWeight(s.Source) > bestWeight {
			best, bestWeight = s.Source, sourceWeight(s.Source)
		}
	}
	return best
}

// InferRolesForContacts infers per-contact roles and decorates each contact
// with its normalized effective role, the single source of truth for every
// downstream component. The returned slice is a copy; inputs are not mutated.
func InferRolesForContacts(contacts []domain.Contact, aux Aux) ([]domain.Contact, []Inference) {
	out := make([]domain.Contact, len(contacts))
	inferences := make([]Inference, len(contacts))
	for i, c := range contacts {
		inf := InferRole(c, aux)
		c.EffectiveRole = inf.Role
		out[i] = c
		inferences[i] = inf
	}
	return out, inferences
}
