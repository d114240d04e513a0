package domain

import "time"

// Canonical pipeline stage identifiers. Stage-expectation and risk-benchmark
// tables are keyed by these; unrecognized stages resolve to an explicit
// default entry, never a runtime error.
const (
	StageAppointmentScheduled  = "appointmentscheduled"
	StageQualifiedToBuy        = "qualifiedtobuy"
	StagePresentationScheduled = "presentationscheduled"
	StageDecisionMakerBoughtIn = "decisionmakerboughtin"
	StageContractSent          = "contractsent"
	StageClosedWon             = "closedwon"
	StageClosedLost            = "closedlost"
)

// lateStages are the stages where missing economic-buyer coverage is most
// damaging. Ordered early → late.
var stageOrder = map[string]int{
	StageAppointmentScheduled:  1,
	StageQualifiedToBuy:        2,
	StagePresentationScheduled: 3,
	StageDecisionMakerBoughtIn: 4,
	StageContractSent:          5,
	StageClosedWon:             6,
	StageClosedLost:            6,
}

// StageOrder returns the 1-based pipeline position of a stage, or 0 for an
// unrecognized stage.
func StageOrder(stage string) int {
	return stageOrder[stage]
}

// Deal is one sales opportunity, as supplied by the CRM fetch layer.
type Deal struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Stage          string     `json:"stage"`
	Amount         float64    `json:"amount"`
	StageEnteredAt *time.Time `json:"stage_entered_at,omitempty"`
}
