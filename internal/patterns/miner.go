package patterns

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// Store abstracts persistence for mined patterns.
type Store interface {
	StorePatterns(ctx context.Context, patterns []models.ServicePattern) error
}

// Miner aggregates remediation history into per-service failure patterns.
type Miner struct {
	store  Store
	logger *slog.Logger
}

// NewMiner constructs a Miner; store may be nil for dry runs.
func NewMiner(logger *slog.Logger, store Store) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{store: store, logger: logger}
}

// Mine rolls the event history up into one pattern per service, sorted by
// escalation rate so chronic offenders surface first.
func (m *Miner) Mine(ctx context.Context, events []models.RemediationEvent) ([]models.ServicePattern, error) {
	if len(events) == 0 {
		return nil, nil
	}

	stats := make(map[string]*serviceAggregate)
	for _, event := range events {
		agg := ensureAggregate(stats, event.ServiceID)
		agg.attempts++
		if event.ActionTaken == models.ActionRestart {
			agg.restarts++
		}
		if event.Escalated {
			agg.escalations++
		}
		if anomalyType := event.Anomaly.AnomalyType; anomalyType != "" {
			agg.anomalyTypes[anomalyType]++
		}
		if event.Timestamp.After(agg.lastSeen) {
			agg.lastSeen = event.Timestamp
		}
	}

	patterns := make([]models.ServicePattern, 0, len(stats))
	for serviceID, agg := range stats {
		pattern := models.ServicePattern{
			ServiceID:      serviceID,
			Attempts:       agg.attempts,
			Restarts:       agg.restarts,
			Escalations:    agg.escalations,
			TopAnomalyType: agg.topAnomalyType(),
			LastSeen:       agg.lastSeen,
		}
		if agg.restarts > 0 {
			pattern.EscalationRate = float64(agg.escalations) / float64(agg.restarts)
		}
		patterns = append(patterns, pattern)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].EscalationRate != patterns[j].EscalationRate {
			return patterns[i].EscalationRate > patterns[j].EscalationRate
		}
		return patterns[i].Attempts > patterns[j].Attempts
	})

	if m.store != nil && len(patterns) > 0 {
		if err := m.store.StorePatterns(ctx, patterns); err != nil {
			m.logger.Warn("pattern store failed", slog.Any("error", err))
		}
	}

	return patterns, nil
}

type serviceAggregate struct {
	attempts     int
	restarts     int
	escalations  int
	lastSeen     time.Time
	anomalyTypes map[string]int
}

func ensureAggregate(m map[string]*serviceAggregate, serviceID string) *serviceAggregate {
	if serviceID == "" {
		serviceID = "unknown"
	}
	agg, ok := m[serviceID]
	if !ok {
		agg = &serviceAggregate{anomalyTypes: make(map[string]int)}
		m[serviceID] = agg
	}
	return agg
}

func (agg *serviceAggregate) topAnomalyType() string {
	var top string
	var best int
	for anomalyType, count := range agg.anomalyTypes {
		if count > best || (count == best && anomalyType < top) {
			top = anomalyType
			best = count
		}
	}
	return top
}
