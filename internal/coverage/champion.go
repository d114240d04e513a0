package coverage

import (
	"fmt"
	"math"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/roles"
)

// Reliability labels the overall champion strength.
type Reliability string

const (
	ChampionStrong     Reliability = "STRONG"
	ChampionModerate   Reliability = "MODERATE"
	ChampionDeveloping Reliability = "DEVELOPING"
	ChampionWeak       Reliability = "WEAK"
	ChampionNone       Reliability = "NONE"
)

// ChampionInputs carries observed interaction rates when the caller has
// them. Nil fields fall back to estimates derived from engagement counters.
type ChampionInputs struct {
	ResponseRate          *float64
	MeetingAttendanceRate *float64
}

// ChampionReport breaks champion strength into four capped 0–25 sub-scores.
type ChampionReport struct {
	Present        bool        `json:"present"`
	Contact        string      `json:"contact,omitempty"`
	Responsiveness int         `json:"responsiveness"`
	Advocacy       int         `json:"advocacy"`
	Attendance     int         `json:"attendance"`
	Influence      int         `json:"influence"`
	Total          int         `json:"total"`
	Reliability    Reliability `json:"reliability"`
	Suggestions    []string    `json:"suggestions,omitempty"`
}

// subScoreFloor: a sub-score below this earns a targeted suggestion.
const subScoreFloor = 15

// AssessChampion scores the strongest champion among the given contacts.
// No champion is a defined NONE state, never an error.
func AssessChampion(champions []domain.Contact, in ChampionInputs) ChampionReport {
	if len(champions) == 0 {
		return ChampionReport{Reliability: ChampionNone}
	}

	// Score the most engaged champion when there are several.
	champ := champions[0]
	for _, c := range champions[1:] {
		if c.Engagement.Sum() > champ.Engagement.Sum() {
			champ = c
		}
	}

	r := ChampionReport{Present: true, Contact: champ.Key()}
	r.Responsiveness = responsivenessScore(champ, in.ResponseRate)
	r.Advocacy = advocacyScore(champ)
	r.Attendance = attendanceScore(champ, in.MeetingAttendanceRate)
	r.Influence = roles.TitleInfluenceScore(champ.Title)
	r.Total = r.Responsiveness + r.Advocacy + r.Attendance + r.Influence
	r.Reliability = reliabilityFor(r.Total)

	if r.Responsiveness < subScoreFloor {
		r.Suggestions = append(r.Suggestions, "Champion is slow to respond; vary channel and timing to rebuild the cadence.")
	}
	if r.Advocacy < subScoreFloor {
		r.Suggestions = append(r.Suggestions, "Little advocacy language observed; arm the champion with internal selling material.")
	}
	if r.Attendance < subScoreFloor {
		r.Suggestions = append(r.Suggestions, "Champion misses or skips meetings; confirm stake and meeting relevance.")
	}
	if r.Influence < subScoreFloor {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf("Champion (%s) may lack internal influence; develop a more senior advocate in parallel.", champ.Title))
	}

	return r
}

func responsivenessScore(c domain.Contact, observed *float64) int {
	if observed != nil {
		return capSub(int(math.Round(*observed * 25)))
	}
	return capSub(c.Engagement.Sum() * 2)
}

func advocacyScore(c domain.Contact) int {
	indicators := roles.CountAdvocacyIndicators(c.Notes)
	return capSub(indicators*5 + 5)
}

func attendanceScore(c domain.Contact, observed *float64) int {
	if observed != nil {
		return capSub(int(math.Round(*observed * 25)))
	}
	return capSub(c.Engagement.Meetings * 5)
}

func reliabilityFor(total int) Reliability {
	switch {
	case total >= 80:
		return ChampionStrong
	case total >= 60:
		return ChampionModerate
	case total >= 40:
		return ChampionDeveloping
	default:
		return ChampionWeak
	}
}

func capSub(v int) int {
	if v > 25 {
		return 25
	}
	if v < 0 {
		return 0
	}
	return v
}
