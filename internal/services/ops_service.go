// Package services hosts the operations facade that API handlers and the
// CLI call into. It composes the remediation engine, the simulated fleet,
// the hygiene calculator, and the pattern miner behind one surface.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelstack/sentinel-ops/internal/engine"
	"github.com/sentinelstack/sentinel-ops/internal/hygiene"
	"github.com/sentinelstack/sentinel-ops/internal/metrics"
	"github.com/sentinelstack/sentinel-ops/internal/models"
	"github.com/sentinelstack/sentinel-ops/internal/patterns"
	"github.com/sentinelstack/sentinel-ops/internal/sim"
	"github.com/sentinelstack/sentinel-ops/internal/utils"
)

// ErrUnknownService marks requests that name a service outside the fleet.
var ErrUnknownService = errors.New("unknown service")

// FleetView exposes the read-only fleet state the facade reports on.
type FleetView interface {
	Instances() []models.Instance
	Services() []models.Service
	ServiceIDs() []string
	Summary() models.FleetSummary
}

// OpsService is the operations facade behind the HTTP API and CLI.
type OpsService struct {
	logger          *slog.Logger
	remediator      *engine.Remediator
	source          engine.AnomalySource
	executor        engine.RestartExecutor
	prober          engine.HealthProber
	history         engine.EventLog
	fleet           FleetView
	miner           *patterns.Miner
	healthThreshold float64
}

// NewOpsService constructs the facade.
func NewOpsService(
	logger *slog.Logger,
	remediator *engine.Remediator,
	source engine.AnomalySource,
	executor engine.RestartExecutor,
	prober engine.HealthProber,
	history engine.EventLog,
	fleet FleetView,
	healthThreshold float64,
) *OpsService {
	if logger == nil {
		logger = slog.Default()
	}
	if healthThreshold <= 0 {
		healthThreshold = 0.7
	}
	return &OpsService{
		logger:          logger,
		remediator:      remediator,
		source:          source,
		executor:        executor,
		prober:          prober,
		history:         history,
		fleet:           fleet,
		miner:           patterns.NewMiner(logger, nil),
		healthThreshold: healthThreshold,
	}
}

// Events returns the full remediation history in append order.
func (s *OpsService) Events() ([]models.RemediationEvent, error) {
	events, err := s.history.List()
	if err != nil {
		return nil, utils.NewAppError("ops.events", "failed to read event history", err)
	}
	return events, nil
}

// Reports derives incident reports for all resolved or escalated events.
func (s *OpsService) Reports() ([]models.IncidentReport, error) {
	events, err := s.Events()
	if err != nil {
		return nil, err
	}
	reports := make([]models.IncidentReport, 0, len(events))
	for _, event := range events {
		reports = append(reports, engine.BuildIncidentReport(event, s.healthThreshold))
	}
	return reports, nil
}

// ScanOnce runs a single remediation cycle and returns what it recorded.
func (s *OpsService) ScanOnce(ctx context.Context) []models.RemediationEvent {
	return s.remediator.ScanOnce(ctx)
}

// AssessAll grades every service in the fleet. A failing assessment for
// one service is skipped rather than failing the whole sweep.
func (s *OpsService) AssessAll(ctx context.Context) []models.AnomalyAssessment {
	var out []models.AnomalyAssessment
	for _, serviceID := range s.fleet.ServiceIDs() {
		assessment, err := s.source.Assess(ctx, serviceID)
		if err != nil {
			s.logger.Warn("assessment failed",
				slog.String("service_id", serviceID),
				slog.Any("error", err))
			continue
		}
		out = append(out, assessment)
	}
	return out
}

// Hygiene recomputes the composite hygiene score from current fleet state
// and remediation history. The score is never cached.
func (s *OpsService) Hygiene(ctx context.Context) (models.HygieneScore, error) {
	events, err := s.Events()
	if err != nil {
		return models.HygieneScore{}, err
	}
	instances := s.fleet.Instances()
	forecast := sim.Forecast(nextMonth(), instances)

	inputs := hygiene.DeriveInputs(
		sim.IdlePercentage(instances),
		s.AssessAll(ctx),
		&forecast,
		events,
	)
	score := hygiene.Compute(inputs)
	metrics.SetHygieneScore(score.Score)
	return score, nil
}

// ManualRestart restarts a service on operator request. It bypasses the
// per-service policy gate and the mode flag but still verifies and records
// the result. The engine's escalation state is left untouched.
func (s *OpsService) ManualRestart(ctx context.Context, serviceID string) (models.RemediationEvent, error) {
	if !s.knownService(serviceID) {
		return models.RemediationEvent{}, utils.NewAppError("ops.restart", serviceID, ErrUnknownService)
	}

	event := models.RemediationEvent{
		EventID:   uuid.NewString()[:8],
		ServiceID: serviceID,
		Anomaly: models.AnomalyAssessment{
			ServiceID: serviceID,
			Reason:    "Manual restart requested by operator",
		},
		ActionTaken: models.ActionRestart,
		Timestamp:   time.Now().UTC(),
	}

	result, err := s.executor.Restart(ctx, serviceID)
	if err != nil {
		zero := 0.0
		event.PostHealth = &zero
		metrics.ObserveRestart("failed")
		s.appendEvent(event)
		return event, utils.NewAppError("ops.restart", "restart failed", err)
	}
	event.Restart = &result
	metrics.ObserveRestart(result.Status)

	health, err := s.prober.ProbeHealth(ctx, serviceID)
	if err != nil {
		s.logger.Warn("health probe failed after manual restart",
			slog.String("service_id", serviceID),
			slog.Any("error", err))
		health = 0
	}
	event.PostHealth = &health

	s.appendEvent(event)
	return event, nil
}

// ReEnable clears a per-service escalation disable.
func (s *OpsService) ReEnable(serviceID string) error {
	if !s.remediator.ReEnable(serviceID) {
		return utils.NewAppError("ops.reenable", serviceID, ErrUnknownService)
	}
	return nil
}

// Enable turns automatic remediation on.
func (s *OpsService) Enable() { s.remediator.Enable() }

// Disable turns automatic remediation off.
func (s *OpsService) Disable() { s.remediator.Disable() }

// EngineStatus is a point-in-time snapshot of the remediation engine.
type EngineStatus struct {
	Enabled          bool                   `json:"enabled"`
	DisabledServices []string               `json:"disabled_services"`
	Policies         []models.ServicePolicy `json:"policies"`
	CyclesRun        int                    `json:"cycles_run"`
	RestartAttempts  int                    `json:"restart_attempts"`
	Escalations      int                    `json:"escalations"`
	FailureRate      float64                `json:"failure_rate"`
}

// Status reports current engine state and cycle counters.
func (s *OpsService) Status() EngineStatus {
	stats := s.remediator.Stats()
	total, escalated := stats.Restarts()
	disabled := s.remediator.DisabledServices()
	if disabled == nil {
		disabled = []string{}
	}
	return EngineStatus{
		Enabled:          s.remediator.IsEnabled(),
		DisabledServices: disabled,
		Policies:         s.remediator.Policies(),
		CyclesRun:        stats.Cycles(),
		RestartAttempts:  total,
		Escalations:      escalated,
		FailureRate:      stats.FailureRate(),
	}
}

// Patterns mines per-service failure patterns from the event history.
func (s *OpsService) Patterns(ctx context.Context) ([]models.ServicePattern, error) {
	events, err := s.Events()
	if err != nil {
		return nil, err
	}
	return s.miner.Mine(ctx, events)
}

// FleetSummary returns aggregate fleet state.
func (s *OpsService) FleetSummary() models.FleetSummary {
	return s.fleet.Summary()
}

// Forecast projects next month's spend from current instances.
func (s *OpsService) Forecast() models.CostForecast {
	return sim.Forecast(nextMonth(), s.fleet.Instances())
}

func (s *OpsService) knownService(serviceID string) bool {
	for _, id := range s.fleet.ServiceIDs() {
		if id == serviceID {
			return true
		}
	}
	return false
}

func (s *OpsService) appendEvent(event models.RemediationEvent) {
	if err := s.history.Append(event); err != nil {
		s.logger.Error("failed to persist manual restart event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err))
	}
}

func nextMonth() string {
	return time.Now().UTC().AddDate(0, 1, 0).Format("2006-01")
}
