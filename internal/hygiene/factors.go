package hygiene

import "github.com/sentinelstack/sentinel-ops/internal/models"

// severityPenalties maps anomaly severity to its hygiene penalty weight.
var severityPenalties = map[models.Severity]float64{
	models.SeverityNone:     0,
	models.SeverityLow:      5,
	models.SeverityMedium:   15,
	models.SeverityHigh:     30,
	models.SeverityCritical: 50,
}

const (
	unknownSeverityPenalty = 10
	missingForecastPenalty = 20
)

// AnomalyPenalty sums per-anomaly severity weights over the active
// assessments, capped at 100.
func AnomalyPenalty(assessments []models.AnomalyAssessment) float64 {
	var total float64
	for _, a := range assessments {
		if !a.HasAnomaly {
			continue
		}
		weight, ok := severityPenalties[a.Severity]
		if !ok {
			weight = unknownSeverityPenalty
		}
		total += weight
	}
	return clamp(total, 0, 100)
}

// CostRiskPenalty converts forecast confidence and risk factors into a
// 0-100 penalty. A missing forecast carries a flat default penalty.
func CostRiskPenalty(forecast *models.CostForecast) float64 {
	if forecast == nil {
		return missingForecastPenalty
	}
	confidencePenalty := (1 - forecast.Confidence) * 50
	riskPenalty := float64(len(forecast.RiskFactors)) * 10
	return clamp(confidencePenalty+riskPenalty, 0, 100)
}

// RestartFailureRate is the percentage of restart attempts in the event
// history that ended escalated. No restarts means no penalty.
func RestartFailureRate(events []models.RemediationEvent) float64 {
	var restarts, failures int
	for _, event := range events {
		if event.ActionTaken != models.ActionRestart {
			continue
		}
		restarts++
		if event.Escalated {
			failures++
		}
	}
	if restarts == 0 {
		return 0
	}
	return clamp(float64(failures)/float64(restarts)*100, 0, 100)
}

// DeriveInputs assembles the four penalty factors from current fleet
// state and remediation history.
func DeriveInputs(
	idlePercentage float64,
	assessments []models.AnomalyAssessment,
	forecast *models.CostForecast,
	events []models.RemediationEvent,
) Inputs {
	return Inputs{
		IdlePercentage:     idlePercentage,
		AnomalyPenalty:     AnomalyPenalty(assessments),
		CostRiskPenalty:    CostRiskPenalty(forecast),
		RestartFailureRate: RestartFailureRate(events),
	}
}
