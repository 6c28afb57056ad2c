package models

import "time"

// Instance is a compute instance with its recent usage samples.
type Instance struct {
	InstanceID  string            `json:"instance_id"`
	CPUUsage    []float64         `json:"cpu_usage"`
	RAMUsage    []float64         `json:"ram_usage"`
	LastRequest time.Time         `json:"last_request"`
	Tags        map[string]string `json:"tags"`
}

// AvgCPU returns the mean CPU usage over the sampled window.
func (i Instance) AvgCPU() float64 {
	return mean(i.CPUUsage)
}

// AvgRAM returns the mean RAM usage over the sampled window.
func (i Instance) AvgRAM() float64 {
	return mean(i.RAMUsage)
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// Service is a deployable unit running on an instance.
type Service struct {
	ServiceID   string    `json:"service_id"`
	InstanceID  string    `json:"instance_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	LastRestart time.Time `json:"last_restart"`
}

// MetricPoint is one telemetry sample for a service.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       float64   `json:"cpu"`
	RAM       float64   `json:"ram"`
	LatencyMS float64   `json:"latency_ms"`
	ErrorRate float64   `json:"error_rate"`
}

// CostForecast projects next-month spend with a confidence estimate.
type CostForecast struct {
	Month         string             `json:"month"`
	PredictedCost float64            `json:"predicted_cost"`
	Confidence    float64            `json:"confidence"`
	Narrative     string             `json:"narrative,omitempty"`
	Breakdown     map[string]float64 `json:"breakdown,omitempty"`
	RiskFactors   []string           `json:"risk_factors,omitempty"`
}

// FleetSummary aggregates fleet-wide counts for reporting.
type FleetSummary struct {
	TotalInstances  int       `json:"total_instances"`
	IdleInstances   int       `json:"idle_instances"`
	TotalServices   int       `json:"total_services"`
	HealthyServices int       `json:"healthy_services"`
	GeneratedAt     time.Time `json:"generated_at"`
}
