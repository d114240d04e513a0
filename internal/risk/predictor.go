// Package risk predicts deal risk from the scoring snapshot, coverage state,
// and auxiliary engagement history: champion churn, economic-buyer exposure,
// meeting progression, and stage velocity.
package risk

import (
	"math"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// Level labels a sub-model or composite risk result.
type Level string

const (
	LevelHigh    Level = "HIGH"
	LevelMedium  Level = "MEDIUM"
	LevelLow     Level = "LOW"
	LevelNone    Level = "NONE"
	LevelHealthy Level = "HEALTHY"
	LevelUnknown Level = "UNKNOWN"
)

// History carries the auxiliary engagement history the predictor consumes.
// Nil pointer fields mean "not observed" and mute the factors that depend
// on them; zero-value ints mean an observed zero.
type History struct {
	// Champion interaction history.
	ChampionResponseRate *float64 `json:"champion_response_rate,omitempty"`
	// EngagementDelta is the champion's engagement-score change versus the
	// prior snapshot (negative means cooling).
	EngagementDelta   *int `json:"engagement_delta,omitempty"`
	MissedMeetings    int  `json:"missed_meetings"`
	DaysSinceContact  *int `json:"days_since_contact,omitempty"`

	// Meeting cadence history.
	MeetingsSinceStageChange int      `json:"meetings_since_stage_change"`
	DaysSinceLastMeeting     *int     `json:"days_since_last_meeting,omitempty"`
	AttendeeCountDelta       *float64 `json:"attendee_count_delta,omitempty"`
}

// Factor is one additive contribution inside a sub-model.
type Factor struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// SubModel is one sub-model's breakdown.
type SubModel struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Factors []Factor `json:"factors,omitempty"`
}

// Prediction is the composite risk assessment for one deal.
type Prediction struct {
	DealID string `json:"deal_id"`

	ChampionChurn      SubModel `json:"champion_churn"`
	EconomicBuyer      SubModel `json:"economic_buyer"`
	MeetingProgression SubModel `json:"meeting_progression"`

	Composite       int      `json:"composite"`
	Overall         Level    `json:"overall"`
	PriorityActions []string `json:"priority_actions,omitempty"`

	Velocity Velocity `json:"velocity"`
}

// Predict runs every sub-model and combines them 0.35/0.35/0.30. Overall is
// HIGH when the composite crosses 50 or any sub-model is independently HIGH.
func Predict(deal domain.Deal, snap domain.ScoreSnapshot, hist History) Prediction {
	p := Prediction{
		DealID:             deal.ID,
		ChampionChurn:      championChurn(snap, hist),
		EconomicBuyer:      economicBuyer(deal.Stage, snap),
		MeetingProgression: meetingProgression(hist),
		Velocity:           CheckVelocity(deal),
	}

	p.Composite = int(math.Round(
		0.35*float64(p.ChampionChurn.Score) +
			0.35*float64(p.EconomicBuyer.Score) +
			0.30*float64(p.MeetingProgression.Score)))

	anyHigh := p.ChampionChurn.Level == LevelHigh ||
		p.EconomicBuyer.Level == LevelHigh ||
		p.MeetingProgression.Level == LevelHigh
	switch {
	case p.Composite >= 50 || anyHigh:
		p.Overall = LevelHigh
	case p.Composite >= 25:
		p.Overall = LevelMedium
	case p.Composite > 0:
		p.Overall = LevelLow
	default:
		p.Overall = LevelHealthy
	}

	// Priority actions from HIGH sub-models, champion first.
	if p.ChampionChurn.Level == LevelHigh {
		p.PriorityActions = append(p.PriorityActions,
			"Re-engage the champion this week; churn indicators are firing.")
	}
	if p.EconomicBuyer.Level == LevelHigh {
		p.PriorityActions = append(p.PriorityActions,
			"Secure economic-buyer involvement; no engaged budget authority at this stage.")
	}
	if p.MeetingProgression.Level == LevelHigh {
		p.PriorityActions = append(p.PriorityActions,
			"Meeting cadence has stalled; book a next-step meeting with a concrete agenda.")
	}

	return p
}

// championChurn scores how likely the champion is to disengage. UNKNOWN
// when the deal has no champion at all.
func championChurn(snap domain.ScoreSnapshot, hist History) SubModel {
	if !snap.HasRole(domain.RoleChampion) {
		return SubModel{Level: LevelUnknown}
	}

	var m SubModel
	if hist.ChampionResponseRate != nil && *hist.ChampionResponseRate < 0.3 {
		m.add("response rate below 30%", 25)
	}
	if hist.EngagementDelta != nil && *hist.EngagementDelta <= -20 {
		m.add("engagement dropped 20+ points since last snapshot", 30)
	}
	if hist.MissedMeetings >= 2 {
		m.add("two or more missed meetings", 20)
	}
	if hist.DaysSinceContact != nil && *hist.DaysSinceContact >= 14 {
		m.add("no contact for 14+ days", 25)
	}

	m.Level = bandSub(m.Score, 60, 30)
	return m
}

// economicBuyerPenalty is the stage-indexed penalty applied when neither
// DECISION_MAKER nor BUDGET_HOLDER is covered: the later the stage, the
// more damaging the gap.
func economicBuyerPenalty(stage string) int {
	switch domain.StageOrder(stage) {
	case 1, 2:
		return 15
	// Unrecognized stages (order 0) take the mid band: without a known
	// pipeline position there is no basis for the late-stage maximum.
	case 0, 3, 4:
		return 40
	default:
		return 60
	}
}

// lowBuyerEngagementFloor marks economic-buyer roles that are covered but
// barely engaged.
const lowBuyerEngagementFloor = 30

func economicBuyer(stage string, snap domain.ScoreSnapshot) SubModel {
	var m SubModel

	covered := snap.HasRole(domain.RoleDecisionMaker) || snap.HasRole(domain.RoleBudgetHolder)
	if !covered {
		m.add("no decision maker or budget holder covered", economicBuyerPenalty(stage))
	} else {
		sum, n := 0, 0
		for _, cs := range snap.Contacts {
			if cs.Role.IsExecutiveTier() {
				sum += cs.Score
				n++
			}
		}
		if n > 0 && sum/n < lowBuyerEngagementFloor {
			m.add("economic-buyer roles covered but under-engaged", 25)
		}
	}

	m.Level = bandSub(m.Score, 50, 25)
	return m
}

func meetingProgression(hist History) SubModel {
	var m SubModel
	if hist.MeetingsSinceStageChange >= 5 {
		m.add("five or more meetings without stage advance", 35)
	}
	if hist.DaysSinceLastMeeting != nil && *hist.DaysSinceLastMeeting >= 14 {
		m.add("no meeting for 14+ days", 25)
	}
	if hist.AttendeeCountDelta != nil && *hist.AttendeeCountDelta <= -2 {
		m.add("average attendee count dropped by 2+", 20)
	}
	m.Level = bandSub(m.Score, 50, 25)
	return m
}

func (m *SubModel) add(reason string, points int) {
	m.Factors = append(m.Factors, Factor{Reason: reason, Points: points})
	m.Score += points
}

func bandSub(score, highFloor, mediumFloor int) Level {
	switch {
	case score >= highFloor:
		return LevelHigh
	case score >= mediumFloor:
		return LevelMedium
	case score > 0:
		return LevelLow
	default:
		return LevelNone
	}
}
