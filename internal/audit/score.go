package audit

import (
	"math"

	"github.com/sells-group/solarsense-cli/internal/model"
)

const (
	// MinScore and MaxScore bound the efficiency score.
	MinScore = 40
	MaxScore = 100

	setpointPenaltyPerDegree = 5.0
	noCurtainsPenalty        = 5.0
	poorInsulationPenalty    = 15.0
	highUsagePenalty         = 10.0
	highUsageThresholdKWh    = 500
)

// Score computes the 40-100 efficiency score for a profile given the total
// monthly consumption from its breakdown. Penalties are additive.
func Score(p model.AuditProfile, totalKWh int) int {
	score := float64(MaxScore)

	if p.ThermostatSetpoint > ComfortSetpoint {
		score -= setpointPenaltyPerDegree * (p.ThermostatSetpoint - ComfortSetpoint)
	}
	if p.Curtains == model.CurtainsNone {
		score -= noCurtainsPenalty
	}
	if p.InsulationLevel == model.QualityPoor {
		score -= poorInsulationPenalty
	}
	if totalKWh > highUsageThresholdKWh {
		score -= highUsagePenalty
	}

	s := int(math.Round(score))
	return max(MinScore, min(MaxScore, s))
}

// Result bundles the estimator and scorer outputs for one profile.
type Result struct {
	EndUse   model.EndUseBreakdown
	TotalKWh int
	Score    int
}

// Evaluate runs the estimator followed by the scorer.
func Evaluate(p model.AuditProfile) Result {
	b := EstimateConsumption(p)
	total := b.Total()
	return Result{
		EndUse:   b,
		TotalKWh: total,
		Score:    Score(p, total),
	}
}
