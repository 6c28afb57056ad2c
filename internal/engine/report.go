package engine

import (
	"fmt"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// BuildIncidentReport derives the operator-facing report for a completed
// remediation event. The root cause is never empty.
func BuildIncidentReport(event models.RemediationEvent, healthThreshold float64) models.IncidentReport {
	anomalyType := event.Anomaly.AnomalyType
	if anomalyType == "" {
		anomalyType = "unknown"
	}
	reason := event.Anomaly.Reason
	if reason == "" {
		reason = "No details available"
	}
	rootCause := fmt.Sprintf("%s: %s", anomalyType, reason)

	var duration time.Duration
	if event.Restart != nil {
		duration = event.Restart.TimeTaken
	}

	return models.IncidentReport{
		EventID:     event.EventID,
		ServiceID:   event.ServiceID,
		RootCause:   rootCause,
		ActionTaken: event.ActionTaken,
		Outcome:     classifyOutcome(event, healthThreshold),
		Duration:    duration,
		GeneratedAt: time.Now().UTC(),
	}
}

func classifyOutcome(event models.RemediationEvent, healthThreshold float64) models.Outcome {
	switch {
	case event.ActionTaken == models.ActionNone:
		return models.OutcomeNoAction
	case event.Escalated:
		return models.OutcomeEscalated
	case event.PostHealth != nil && *event.PostHealth >= healthThreshold:
		return models.OutcomeResolved
	default:
		return models.OutcomeFailed
	}
}

func outcomeLabel(event models.RemediationEvent, healthThreshold float64) string {
	return string(classifyOutcome(event, healthThreshold))
}
