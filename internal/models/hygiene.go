package models

import "time"

// HygieneStatus labels the composite hygiene score.
type HygieneStatus string

const (
	HygieneCritical       HygieneStatus = "critical"
	HygieneNeedsAttention HygieneStatus = "needs_attention"
	HygieneHealthy        HygieneStatus = "healthy"
)

// Factor names the four weighted hygiene inputs.
type Factor string

const (
	FactorIdle           Factor = "idle"
	FactorAnomaly        Factor = "anomaly"
	FactorCostRisk       Factor = "cost_risk"
	FactorRestartFailure Factor = "restart_failure"
)

// FactorScore breaks one hygiene factor into its pieces: the raw penalty
// fed in, the per-factor score (100 - penalty), and the weighted
// contribution to the composite.
type FactorScore struct {
	Penalty      float64 `json:"penalty"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// HygieneScore is the 0-100 composite infrastructure-health number.
// Always recomputed from current fleet state, never stored as truth.
type HygieneScore struct {
	Score        float64                `json:"score"`
	Status       HygieneStatus          `json:"status"`
	Breakdown    map[Factor]FactorScore `json:"breakdown"`
	Suggestions  []string               `json:"suggestions"`
	CalculatedAt time.Time              `json:"calculated_at"`
}
