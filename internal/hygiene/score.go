// Package hygiene reduces fleet-wide penalty factors into a single
// 0-100 infrastructure hygiene score with a status label and
// improvement suggestions.
package hygiene

import (
	"fmt"
	"math"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// Factor weights sum to 1.0.
const (
	weightIdle           = 0.25
	weightAnomaly        = 0.30
	weightCostRisk       = 0.25
	weightRestartFailure = 0.20
)

// Inputs are already-normalized penalty values, each on a 0-100 scale.
// Values outside that range are clamped before scoring so the breakdown
// stays individually interpretable.
type Inputs struct {
	IdlePercentage     float64
	AnomalyPenalty     float64
	CostRiskPenalty    float64
	RestartFailureRate float64
}

// Compute maps the four penalty factors to a composite hygiene score.
// Each factor contributes (100 - penalty) * weight; the status boundary
// at exactly 75 belongs to needs_attention.
func Compute(in Inputs) models.HygieneScore {
	breakdown := map[models.Factor]models.FactorScore{
		models.FactorIdle:           factorScore(in.IdlePercentage, weightIdle),
		models.FactorAnomaly:        factorScore(in.AnomalyPenalty, weightAnomaly),
		models.FactorCostRisk:       factorScore(in.CostRiskPenalty, weightCostRisk),
		models.FactorRestartFailure: factorScore(in.RestartFailureRate, weightRestartFailure),
	}

	var score float64
	for _, fs := range breakdown {
		score += fs.Contribution
	}
	score = clamp(score, 0, 100)
	// Status comes from the raw score; rounding to one decimal is for
	// display only and must not move a score across a boundary.
	status := ClassifyStatus(score)

	return models.HygieneScore{
		Score:        round1(score),
		Status:       status,
		Breakdown:    breakdown,
		Suggestions:  suggestions(breakdown),
		CalculatedAt: time.Now().UTC(),
	}
}

// ClassifyStatus is a pure step function over the score.
func ClassifyStatus(score float64) models.HygieneStatus {
	switch {
	case score < 50:
		return models.HygieneCritical
	case score <= 75:
		return models.HygieneNeedsAttention
	default:
		return models.HygieneHealthy
	}
}

func factorScore(penalty, weight float64) models.FactorScore {
	penalty = clamp(penalty, 0, 100)
	score := 100 - penalty
	return models.FactorScore{
		Penalty:      round1(penalty),
		Score:        round1(score),
		Weight:       weight,
		Contribution: score * weight,
	}
}

// suggestions derives deterministic improvement advice from the factor
// breakdown. The list is never empty.
func suggestions(breakdown map[models.Factor]models.FactorScore) []string {
	var out []string

	idlePct := breakdown[models.FactorIdle].Penalty
	if idlePct > 20 {
		out = append(out, fmt.Sprintf("Terminate or downsize %.0f%% idle instances to reduce costs", idlePct))
	} else if idlePct > 10 {
		out = append(out, "Review idle instances for potential consolidation")
	}

	anomalyPenalty := breakdown[models.FactorAnomaly].Penalty
	if anomalyPenalty >= 30 {
		out = append(out, "Investigate active service anomalies immediately")
	} else if anomalyPenalty > 0 {
		out = append(out, "Monitor detected anomalies and set up alerting")
	}

	costScore := breakdown[models.FactorCostRisk].Score
	if costScore < 60 {
		out = append(out, "Review cost forecast risk factors and implement budget alerts")
	} else if costScore < 80 {
		out = append(out, "Consider reserved instances for predictable workloads")
	}

	failureRate := breakdown[models.FactorRestartFailure].Penalty
	if failureRate > 20 {
		out = append(out, "Investigate restart failures and check service dependencies")
	} else if failureRate > 5 {
		out = append(out, "Review restart procedures and health check configurations")
	}

	if len(out) == 0 {
		out = append(out, "Infrastructure is healthy, continue monitoring")
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
