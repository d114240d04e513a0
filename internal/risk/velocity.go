package risk

import (
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// VelocityStatus labels how a deal is moving through its current stage.
type VelocityStatus string

const (
	VelocityOnTrack VelocityStatus = "ON_TRACK"
	VelocitySlowing VelocityStatus = "SLOWING"
	VelocityStuck   VelocityStatus = "STUCK"
	// VelocityUnknown means the stage-entry timestamp was missing or
	// invalid: "unable to determine", not stuck.
	VelocityUnknown VelocityStatus = "UNKNOWN"
)

// StageBenchmark holds the expected and maximum healthy days in a stage.
type StageBenchmark struct {
	ExpectedDays int `json:"expected_days"`
	MaxDays      int `json:"max_days"`
}

// stageBenchmarks is static configuration keyed by pipeline stage;
// unlisted stages use defaultBenchmark.
var stageBenchmarks = map[string]StageBenchmark{
	domain.StageAppointmentScheduled:  {ExpectedDays: 7, MaxDays: 21},
	domain.StageQualifiedToBuy:        {ExpectedDays: 14, MaxDays: 30},
	domain.StagePresentationScheduled: {ExpectedDays: 14, MaxDays: 30},
	domain.StageDecisionMakerBoughtIn: {ExpectedDays: 21, MaxDays: 45},
	domain.StageContractSent:          {ExpectedDays: 14, MaxDays: 30},
}

var defaultBenchmark = StageBenchmark{ExpectedDays: 21, MaxDays: 45}

// OverrideBenchmarks replaces benchmark entries for the given stages.
// Call once at startup, before any predictions run.
func OverrideBenchmarks(overrides map[string]StageBenchmark) {
	for stage, b := range overrides {
		if b.ExpectedDays > 0 && b.MaxDays >= b.ExpectedDays {
			stageBenchmarks[stage] = b
		}
	}
}

// BenchmarkForStage looks up the velocity benchmark table, falling back to
// the default entry.
func BenchmarkForStage(stage string) StageBenchmark {
	if b, ok := stageBenchmarks[stage]; ok {
		return b
	}
	return defaultBenchmark
}

// Velocity is the stage-velocity verdict for one deal.
type Velocity struct {
	Status      VelocityStatus `json:"status"`
	DaysInStage int            `json:"days_in_stage"`
	Benchmark   StageBenchmark `json:"benchmark"`
}

// CheckVelocity evaluates stage velocity against the current wall clock.
func CheckVelocity(deal domain.Deal) Velocity {
	return CheckVelocityAt(deal, time.Now())
}

// CheckVelocityAt evaluates how long the deal has sat in its current stage
// against the stage benchmark. A missing or future stage-entry timestamp
// yields UNKNOWN.
func CheckVelocityAt(deal domain.Deal, now time.Time) Velocity {
	v := Velocity{Benchmark: BenchmarkForStage(deal.Stage)}

	if deal.StageEnteredAt == nil || deal.StageEnteredAt.IsZero() || deal.StageEnteredAt.After(now) {
		v.Status = VelocityUnknown
		return v
	}

	v.DaysInStage = int(now.Sub(*deal.StageEnteredAt).Hours() / 24)
	switch {
	case v.DaysInStage > v.Benchmark.MaxDays:
		v.Status = VelocityStuck
	case v.DaysInStage > v.Benchmark.ExpectedDays:
		v.Status = VelocitySlowing
	default:
		v.Status = VelocityOnTrack
	}
	return v
}
