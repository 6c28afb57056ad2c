package models

import "time"

// Severity grades how abnormal a service's behaviour is. Only high and
// critical trigger autonomous action.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Actionable reports whether the severity crosses the autonomous-restart gate.
func (s Severity) Actionable() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Action enumerates what the engine did for one remediation event.
type Action string

const (
	ActionNone    Action = "none"
	ActionRestart Action = "restart"
)

// Outcome classifies how a remediation attempt ended.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeEscalated Outcome = "escalated"
	OutcomeFailed    Outcome = "failed"
	OutcomeNoAction  Outcome = "no_action"
)

// AnomalyAssessment is the verdict for one service at one scan instant.
type AnomalyAssessment struct {
	ServiceID         string   `json:"service_id"`
	HasAnomaly        bool     `json:"has_anomaly"`
	Severity          Severity `json:"severity"`
	Reason            string   `json:"reason"`
	Evidence          []string `json:"evidence"`
	AnomalyType       string   `json:"anomaly_type,omitempty"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
}

// RestartResult captures the outcome of a single restart execution.
type RestartResult struct {
	ServiceID   string        `json:"service_id"`
	Status      string        `json:"status"`
	TimeTaken   time.Duration `json:"time_taken_ms"`
	Via         string        `json:"via"`
	CompletedAt time.Time     `json:"completed_at"`
}

// RemediationEvent is the immutable record of one decide/act/verify cycle
// for one service. Created by the engine, owned by the event log afterwards.
type RemediationEvent struct {
	EventID     string            `json:"event_id"`
	ServiceID   string            `json:"service_id"`
	Anomaly     AnomalyAssessment `json:"anomaly"`
	ActionTaken Action            `json:"action_taken"`
	Restart     *RestartResult    `json:"restart,omitempty"`
	PostHealth  *float64          `json:"post_health,omitempty"`
	Escalated   bool              `json:"escalated"`
	Timestamp   time.Time         `json:"timestamp"`
}

// IncidentReport is the human-readable derivative of a remediation event.
type IncidentReport struct {
	EventID     string        `json:"event_id"`
	ServiceID   string        `json:"service_id"`
	RootCause   string        `json:"root_cause"`
	ActionTaken Action        `json:"action_taken"`
	Outcome     Outcome       `json:"outcome"`
	Duration    time.Duration `json:"duration_ms"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ServicePolicy is a read-only snapshot of per-service engine policy state.
type ServicePolicy struct {
	ServiceID          string    `json:"service_id"`
	AutoRestartEnabled bool      `json:"auto_restart_enabled"`
	LastEventID        string    `json:"last_event_id,omitempty"`
	DisabledAt         time.Time `json:"disabled_at,omitempty"`
}
