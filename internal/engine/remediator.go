package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelstack/sentinel-ops/internal/metrics"
	"github.com/sentinelstack/sentinel-ops/internal/models"
	"github.com/sentinelstack/sentinel-ops/internal/utils"
)

// AnomalySource grades the recent telemetry of a single service.
type AnomalySource interface {
	Assess(ctx context.Context, serviceID string) (models.AnomalyAssessment, error)
}

// RestartExecutor performs a service restart and reports how it went.
type RestartExecutor interface {
	Restart(ctx context.Context, serviceID string) (models.RestartResult, error)
}

// HealthProber measures post-restart service health on a 0..1 scale.
type HealthProber interface {
	ProbeHealth(ctx context.Context, serviceID string) (float64, error)
}

// EventLog persists remediation events in append order.
type EventLog interface {
	Append(event models.RemediationEvent) error
	List() ([]models.RemediationEvent, error)
}

// ServiceCatalog enumerates the services a scan cycle covers.
type ServiceCatalog interface {
	ServiceIDs() []string
}

// EventCallback receives every remediation event as it is recorded.
type EventCallback func(event models.RemediationEvent)

type policyState struct {
	autoRestartEnabled bool
	lastEventID        string
	disabledAt         time.Time
}

// Remediator runs the detect/restart/verify/escalate loop over a service
// catalog. Services whose restart fails verification are disabled for
// automatic restarts until re-enabled by an operator.
type Remediator struct {
	logger   *slog.Logger
	source   AnomalySource
	executor RestartExecutor
	prober   HealthProber
	events   EventLog
	catalog  ServiceCatalog

	healthThreshold float64
	checkInterval   time.Duration
	stats           *utils.CycleStats

	// scanMu serializes scan cycles. A service's policy is read at the top
	// of remediate and written in escalate; overlapping cycles must not
	// interleave between those two points.
	scanMu sync.Mutex

	mu        sync.Mutex
	enabled   bool
	running   bool
	policies  map[string]*policyState
	callbacks []EventCallback
	stop      chan struct{}
	done      chan struct{}
}

// Options carries the tunables of a Remediator.
type Options struct {
	HealthThreshold float64
	CheckInterval   time.Duration
	StartEnabled    bool
}

// NewRemediator wires a remediation engine over its collaborators.
func NewRemediator(
	logger *slog.Logger,
	source AnomalySource,
	executor RestartExecutor,
	prober HealthProber,
	events EventLog,
	catalog ServiceCatalog,
	opts Options,
) *Remediator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HealthThreshold <= 0 {
		opts.HealthThreshold = 0.7
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 30 * time.Second
	}
	return &Remediator{
		logger:          logger,
		source:          source,
		executor:        executor,
		prober:          prober,
		events:          events,
		catalog:         catalog,
		healthThreshold: opts.HealthThreshold,
		checkInterval:   opts.CheckInterval,
		stats:           utils.NewCycleStats(512),
		enabled:         opts.StartEnabled,
		policies:        make(map[string]*policyState),
	}
}

// Start launches the periodic scan loop and enables automatic remediation.
// Calling Start on a running engine is a no-op.
func (r *Remediator) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.enabled = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	stop, done := r.stop, r.done
	r.mu.Unlock()

	r.logger.Info("remediation engine started", slog.Duration("interval", r.checkInterval))

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), r.checkInterval)
				r.ScanOnce(ctx)
				cancel()
			}
		}
	}()
}

// Stop disables automatic remediation and halts the scan loop. The engine
// finishes any in-flight cycle before returning.
func (r *Remediator) Stop() {
	r.mu.Lock()
	if !r.running {
		r.enabled = false
		r.mu.Unlock()
		return
	}
	r.running = false
	r.enabled = false
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done
	r.logger.Info("remediation engine stopped")
}

// Enable turns automatic remediation on without touching the scan loop.
func (r *Remediator) Enable() {
	r.mu.Lock()
	r.enabled = true
	r.mu.Unlock()
}

// Disable turns automatic remediation off. Scans still record events but
// never restart anything while disabled.
func (r *Remediator) Disable() {
	r.mu.Lock()
	r.enabled = false
	r.mu.Unlock()
}

// IsEnabled reports whether automatic remediation is currently on.
func (r *Remediator) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// RegisterCallback subscribes a function to every recorded event. Callbacks
// run synchronously inside the scan cycle; panics are recovered and logged.
func (r *Remediator) RegisterCallback(cb EventCallback) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	r.callbacks = append(r.callbacks, cb)
	r.mu.Unlock()
}

// ScanOnce performs a single scan over the catalog and returns the events
// it recorded. A failing anomaly source for one service skips that service
// and continues the cycle.
func (r *Remediator) ScanOnce(ctx context.Context) []models.RemediationEvent {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	start := time.Now()
	var recorded []models.RemediationEvent

	for _, serviceID := range r.catalog.ServiceIDs() {
		if ctx.Err() != nil {
			break
		}
		assessment, err := r.source.Assess(ctx, serviceID)
		if err != nil {
			r.logger.Warn("anomaly assessment failed",
				slog.String("service_id", serviceID),
				slog.Any("error", err))
			continue
		}
		if !assessment.HasAnomaly {
			continue
		}
		event := r.remediate(ctx, assessment)
		recorded = append(recorded, event)
	}

	elapsed := time.Since(start)
	r.stats.ObserveCycle(elapsed)
	metrics.ObserveScanCycle(elapsed)
	r.logger.Debug("scan cycle complete",
		slog.Int("events", len(recorded)),
		slog.Duration("took", elapsed))
	return recorded
}

// remediate handles one anomalous service and records exactly one event.
func (r *Remediator) remediate(ctx context.Context, assessment models.AnomalyAssessment) models.RemediationEvent {
	serviceID := assessment.ServiceID
	event := models.RemediationEvent{
		EventID:     newEventID(),
		ServiceID:   serviceID,
		Anomaly:     assessment,
		ActionTaken: models.ActionNone,
		Timestamp:   time.Now().UTC(),
	}

	switch {
	case !r.serviceRestartAllowed(serviceID):
		r.logger.Info("auto-restart disabled for service, recording only",
			slog.String("service_id", serviceID),
			slog.String("event_id", event.EventID))
	case !r.IsEnabled():
		r.logger.Info("auto-remediation disabled, recording only",
			slog.String("service_id", serviceID),
			slog.String("event_id", event.EventID))
	case !assessment.Severity.Actionable():
		r.logger.Info("severity below action threshold, recording only",
			slog.String("service_id", serviceID),
			slog.String("severity", string(assessment.Severity)))
	default:
		r.executeRestart(ctx, &event)
	}

	r.record(event)
	return event
}

// executeRestart runs the restart and post-restart verification, mutating
// the event in place. A failed restart or probe counts as zero health.
func (r *Remediator) executeRestart(ctx context.Context, event *models.RemediationEvent) {
	serviceID := event.ServiceID
	event.ActionTaken = models.ActionRestart

	result, err := r.executor.Restart(ctx, serviceID)
	if err != nil {
		r.logger.Error("restart failed",
			slog.String("service_id", serviceID),
			slog.Any("error", err))
		metrics.ObserveRestart("failed")
		zero := 0.0
		event.PostHealth = &zero
		r.escalate(event)
		return
	}
	event.Restart = &result
	metrics.ObserveRestart(result.Status)

	health, err := r.prober.ProbeHealth(ctx, serviceID)
	if err != nil {
		r.logger.Warn("health probe failed after restart",
			slog.String("service_id", serviceID),
			slog.Any("error", err))
		health = 0
	}
	event.PostHealth = &health

	if health < r.healthThreshold {
		r.escalate(event)
		return
	}

	r.stats.ObserveAction(false)
	r.logger.Info("service recovered after restart",
		slog.String("service_id", serviceID),
		slog.Float64("health", health))
}

// escalate marks the event escalated and disables further automatic
// restarts for the service until an operator re-enables it.
func (r *Remediator) escalate(event *models.RemediationEvent) {
	event.Escalated = true
	r.stats.ObserveAction(true)

	r.mu.Lock()
	r.policies[event.ServiceID] = &policyState{
		autoRestartEnabled: false,
		lastEventID:        event.EventID,
		disabledAt:         time.Now().UTC(),
	}
	r.mu.Unlock()

	r.logger.Warn("remediation escalated, auto-restart disabled for service",
		slog.String("service_id", event.ServiceID),
		slog.String("event_id", event.EventID))
}

// record appends the event to the log and fans it out to callbacks.
func (r *Remediator) record(event models.RemediationEvent) {
	if err := r.events.Append(event); err != nil {
		r.logger.Error("failed to persist remediation event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err))
	}
	metrics.ObserveRemediation(outcomeLabel(event, r.healthThreshold))

	r.mu.Lock()
	callbacks := make([]EventCallback, len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.Unlock()

	for _, cb := range callbacks {
		r.invoke(cb, event)
	}
}

func (r *Remediator) invoke(cb EventCallback, event models.RemediationEvent) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("event callback panicked", slog.Any("panic", p))
		}
	}()
	cb(event)
}

func (r *Remediator) serviceRestartAllowed(serviceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[serviceID]
	if !ok {
		return true
	}
	return policy.autoRestartEnabled
}

// ReEnable clears a per-service disable set by a prior escalation. It
// returns false when the service has no policy on record.
func (r *Remediator) ReEnable(serviceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[serviceID]
	if !ok {
		return false
	}
	policy.autoRestartEnabled = true
	policy.disabledAt = time.Time{}
	r.logger.Info("auto-restart re-enabled", slog.String("service_id", serviceID))
	return true
}

// Policies returns a snapshot of per-service restart policies.
func (r *Remediator) Policies() []models.ServicePolicy {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ServicePolicy, 0, len(r.policies))
	for serviceID, policy := range r.policies {
		out = append(out, models.ServicePolicy{
			ServiceID:          serviceID,
			AutoRestartEnabled: policy.autoRestartEnabled,
			LastEventID:        policy.lastEventID,
			DisabledAt:         policy.disabledAt,
		})
	}
	return out
}

// DisabledServices lists services currently excluded from auto-restart.
func (r *Remediator) DisabledServices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for serviceID, policy := range r.policies {
		if !policy.autoRestartEnabled {
			out = append(out, serviceID)
		}
	}
	return out
}

// Stats exposes cycle timing and escalation counters.
func (r *Remediator) Stats() *utils.CycleStats {
	return r.stats
}

func newEventID() string {
	return uuid.NewString()[:8]
}
