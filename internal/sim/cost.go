package sim

import (
	"fmt"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// Hourly cost per instance tier, in dollars.
var instanceCosts = map[string]float64{
	"frontend": 0.12,
	"api":      0.18,
	"database": 0.35,
	"cache":    0.15,
	"worker":   0.10,
}

const defaultHourlyCost = 0.10

// CostBreakdown itemises projected monthly cost for a set of instances.
type CostBreakdown struct {
	TotalMonthly     float64
	ByTier           map[string]float64
	ByRegion         map[string]float64
	IdleCount        int
	PotentialSavings float64
}

// EstimateMonthlyCost projects cost over a 30-day month and computes the
// savings available from terminating idle instances.
func EstimateMonthlyCost(instances []models.Instance) CostBreakdown {
	breakdown := CostBreakdown{
		ByTier:   make(map[string]float64),
		ByRegion: make(map[string]float64),
	}

	idle := make(map[string]bool)
	for _, inst := range IdleInstances(instances) {
		idle[inst.InstanceID] = true
	}

	for _, inst := range instances {
		tier := inst.Tags["tier"]
		hourly, ok := instanceCosts[tier]
		if !ok {
			hourly = defaultHourlyCost
		}
		monthly := hourly * 24 * 30

		breakdown.TotalMonthly += monthly
		breakdown.ByTier[tier] += monthly
		breakdown.ByRegion[inst.Tags["region"]] += monthly
		if idle[inst.InstanceID] {
			breakdown.IdleCount++
			breakdown.PotentialSavings += monthly
		}
	}
	return breakdown
}

// Forecast builds a cost forecast for the named month. Confidence degrades
// with small fleets, and risk factors accumulate from low confidence and
// idle capacity.
func Forecast(month string, instances []models.Instance) models.CostForecast {
	breakdown := EstimateMonthlyCost(instances)

	confidence := 0.75
	if len(instances) < 5 {
		confidence = 0.55
	}

	var risks []string
	if confidence < 0.6 {
		risks = append(risks,
			"Limited historical data available",
			"High variance in usage patterns")
	}
	if breakdown.IdleCount > 2 {
		risks = append(risks, fmt.Sprintf("%d idle instances may be terminated", breakdown.IdleCount))
	}

	narrative := fmt.Sprintf("Forecast for %s: predicted cost $%.2f with %.0f%% confidence.",
		month, breakdown.TotalMonthly, confidence*100)
	if breakdown.PotentialSavings > 0 {
		narrative += fmt.Sprintf(" Potential savings of $%.2f from idle resources.", breakdown.PotentialSavings)
	}

	return models.CostForecast{
		Month:         month,
		PredictedCost: breakdown.TotalMonthly,
		Confidence:    confidence,
		Narrative:     narrative,
		Breakdown:     breakdown.ByTier,
		RiskFactors:   risks,
	}
}
