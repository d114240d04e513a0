// Package coverage analyzes how broadly and deeply a deal's stakeholder
// network covers the buying roles its pipeline stage calls for.
package coverage

import "github.com/ignite/dealthread-monitor/internal/domain"

// StageExpectation defines the role coverage a pipeline stage calls for and
// how strictly the passing threshold applies at that maturity.
type StageExpectation struct {
	Stage            string        `json:"stage"`
	RequiredRoles    []domain.Role `json:"required_roles"`
	RecommendedRoles []domain.Role `json:"recommended_roles"`
	// ThresholdMultiplier scales the baseline passing threshold; early
	// stages are graded leniently, late stages at full strictness.
	ThresholdMultiplier float64 `json:"threshold_multiplier"`
}

// baselineThreshold is the full-strictness coverage passing score.
const baselineThreshold = 70

// stageExpectations is static configuration keyed by pipeline stage.
// Unrecognized stages resolve to defaultExpectation, never an error.
var stageExpectations = map[string]StageExpectation{
	domain.StageAppointmentScheduled: {
		Stage:               domain.StageAppointmentScheduled,
		RequiredRoles:       []domain.Role{domain.RoleChampion},
		RecommendedRoles:    []domain.Role{domain.RoleInfluencer, domain.RoleEndUser},
		ThresholdMultiplier: 0.6,
	},
	domain.StageQualifiedToBuy: {
		Stage:               domain.StageQualifiedToBuy,
		RequiredRoles:       []domain.Role{domain.RoleChampion},
		RecommendedRoles:    []domain.Role{domain.RoleDecisionMaker, domain.RoleInfluencer},
		ThresholdMultiplier: 0.7,
	},
	domain.StagePresentationScheduled: {
		Stage:               domain.StagePresentationScheduled,
		RequiredRoles:       []domain.Role{domain.RoleChampion, domain.RoleDecisionMaker},
		RecommendedRoles:    []domain.Role{domain.RoleBudgetHolder, domain.RoleEndUser},
		ThresholdMultiplier: 0.8,
	},
	domain.StageDecisionMakerBoughtIn: {
		Stage:               domain.StageDecisionMakerBoughtIn,
		RequiredRoles:       []domain.Role{domain.RoleDecisionMaker, domain.RoleChampion},
		RecommendedRoles:    []domain.Role{domain.RoleBudgetHolder, domain.RoleProcurement},
		ThresholdMultiplier: 0.9,
	},
	domain.StageContractSent: {
		Stage:               domain.StageContractSent,
		RequiredRoles:       []domain.Role{domain.RoleDecisionMaker, domain.RoleBudgetHolder, domain.RoleChampion},
		RecommendedRoles:    []domain.Role{domain.RoleLegal, domain.RoleProcurement},
		ThresholdMultiplier: 1.0,
	},
}

var defaultExpectation = StageExpectation{
	Stage:               "default",
	RequiredRoles:       []domain.Role{domain.RoleChampion, domain.RoleDecisionMaker},
	RecommendedRoles:    []domain.Role{domain.RoleBudgetHolder},
	ThresholdMultiplier: 0.8,
}

// ExpectationForStage looks up the expectation table, falling back to the
// default entry for unrecognized stages.
func ExpectationForStage(stage string) StageExpectation {
	if exp, ok := stageExpectations[stage]; ok {
		return exp
	}
	return defaultExpectation
}

// AdjustedThreshold returns the stage-scaled passing threshold for the
// combined coverage score.
func (e StageExpectation) AdjustedThreshold() int {
	return int(float64(baselineThreshold)*e.ThresholdMultiplier + 0.5)
}
