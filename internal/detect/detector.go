// Package detect classifies service telemetry into anomaly assessments.
package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// MetricsProvider supplies the telemetry series a detector inspects.
type MetricsProvider interface {
	Metrics(serviceID string) []models.MetricPoint
}

// Thresholds hold the latency (ms) and error-rate boundaries between
// severity grades. Each grade fires when either boundary is crossed.
type Thresholds struct {
	LowLatency      float64
	MediumLatency   float64
	HighLatency     float64
	CriticalLatency float64

	LowErrorRate      float64
	MediumErrorRate   float64
	HighErrorRate     float64
	CriticalErrorRate float64
}

// DefaultThresholds mirror the upstream heuristic: medium at 500ms / 10%
// errors, high at 1000ms / 20%, extended one grade in each direction.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowLatency:      300,
		MediumLatency:   500,
		HighLatency:     1000,
		CriticalLatency: 2000,

		LowErrorRate:      0.05,
		MediumErrorRate:   0.1,
		HighErrorRate:     0.2,
		CriticalErrorRate: 0.4,
	}
}

// Detector derives anomaly assessments from average latency and error rate.
type Detector struct {
	logger     *slog.Logger
	provider   MetricsProvider
	thresholds Thresholds
}

// NewDetector constructs a Detector with default thresholds.
func NewDetector(logger *slog.Logger, provider MetricsProvider) *Detector {
	return NewDetectorWithThresholds(logger, provider, DefaultThresholds())
}

// NewDetectorWithThresholds constructs a Detector with explicit boundaries.
func NewDetectorWithThresholds(logger *slog.Logger, provider MetricsProvider, thresholds Thresholds) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger, provider: provider, thresholds: thresholds}
}

// Assess inspects the service's recent telemetry and grades it. A service
// with no telemetry is reported as severity none rather than an error.
func (d *Detector) Assess(ctx context.Context, serviceID string) (models.AnomalyAssessment, error) {
	if err := ctx.Err(); err != nil {
		return models.AnomalyAssessment{}, err
	}
	if d.provider == nil {
		return models.AnomalyAssessment{}, fmt.Errorf("metrics provider not configured")
	}

	series := d.provider.Metrics(serviceID)
	if len(series) == 0 {
		return models.AnomalyAssessment{
			ServiceID: serviceID,
			Severity:  models.SeverityNone,
			Reason:    "No metrics data",
		}, nil
	}

	avgLatency := 0.0
	avgErrorRate := 0.0
	for _, p := range series {
		avgLatency += p.LatencyMS
		avgErrorRate += p.ErrorRate
	}
	avgLatency /= float64(len(series))
	avgErrorRate /= float64(len(series))

	severity := d.classify(avgLatency, avgErrorRate)
	evidence := []string{
		fmt.Sprintf("avg_latency=%.2fms", avgLatency),
		fmt.Sprintf("avg_error_rate=%.2f%%", avgErrorRate*100),
	}

	assessment := models.AnomalyAssessment{
		ServiceID: serviceID,
		Severity:  severity,
		Evidence:  evidence,
	}

	if severity == models.SeverityNone {
		assessment.Reason = "Metrics within normal thresholds"
		return assessment, nil
	}

	assessment.HasAnomaly = true
	assessment.Reason = fmt.Sprintf("High latency (%.2fms) or error rate (%.2f%%)", avgLatency, avgErrorRate*100)
	assessment.AnomalyType = d.anomalyType(avgLatency, avgErrorRate)
	if severity.Actionable() {
		assessment.RecommendedAction = "restart"
	} else {
		assessment.RecommendedAction = "monitor"
	}

	d.logger.Debug("anomaly assessed",
		slog.String("service_id", serviceID),
		slog.String("severity", string(severity)),
		slog.Float64("avg_latency_ms", avgLatency),
		slog.Float64("avg_error_rate", avgErrorRate))

	return assessment, nil
}

func (d *Detector) classify(latency, errorRate float64) models.Severity {
	t := d.thresholds
	switch {
	case latency > t.CriticalLatency || errorRate > t.CriticalErrorRate:
		return models.SeverityCritical
	case latency > t.HighLatency || errorRate > t.HighErrorRate:
		return models.SeverityHigh
	case latency > t.MediumLatency || errorRate > t.MediumErrorRate:
		return models.SeverityMedium
	case latency > t.LowLatency || errorRate > t.LowErrorRate:
		return models.SeverityLow
	default:
		return models.SeverityNone
	}
}

func (d *Detector) anomalyType(latency, errorRate float64) string {
	// Pick the dominant factor relative to its medium boundary.
	latencyRatio := latency / d.thresholds.MediumLatency
	errorRatio := errorRate / d.thresholds.MediumErrorRate
	if errorRatio > latencyRatio {
		return "error_surge"
	}
	return "latency_spike"
}
