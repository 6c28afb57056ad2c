package executor

import (
	"context"
	"log/slog"

	"github.com/sentinelstack/sentinel-ops/internal/detect"
)

// Health penalties: each point of error rate counts double, and every
// 1000ms of latency costs 0.5.
const (
	errorRatePenalty = 2.0
	latencyPenalty   = 0.5
	recentWindow     = 5
)

// Prober derives a normalized health score from recent service telemetry.
type Prober struct {
	logger   *slog.Logger
	provider detect.MetricsProvider
}

// NewProber constructs a Prober over the given telemetry source.
func NewProber(logger *slog.Logger, provider detect.MetricsProvider) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{logger: logger, provider: provider}
}

// ProbeHealth scores the service's last few samples into [0,1]. A service
// with no telemetry scores zero.
func (p *Prober) ProbeHealth(ctx context.Context, serviceID string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	series := p.provider.Metrics(serviceID)
	if len(series) == 0 {
		return 0, nil
	}

	recent := series
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	avgErrorRate := 0.0
	avgLatency := 0.0
	for _, point := range recent {
		avgErrorRate += point.ErrorRate
		avgLatency += point.LatencyMS
	}
	avgErrorRate /= float64(len(recent))
	avgLatency /= float64(len(recent))

	health := 1.0
	health -= avgErrorRate * errorRatePenalty
	health -= (avgLatency / 1000) * latencyPenalty

	if health < 0 {
		health = 0
	}
	if health > 1 {
		health = 1
	}

	p.logger.Debug("health probe",
		slog.String("service_id", serviceID),
		slog.Float64("health", health))

	return health, nil
}
