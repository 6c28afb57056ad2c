package models

import "time"

// ServicePattern is an aggregated remediation profile for one service,
// mined from the event log.
type ServicePattern struct {
	ServiceID      string    `json:"service_id"`
	Attempts       int       `json:"attempts"`
	Restarts       int       `json:"restarts"`
	Escalations    int       `json:"escalations"`
	EscalationRate float64   `json:"escalation_rate"`
	TopAnomalyType string    `json:"top_anomaly_type,omitempty"`
	LastSeen       time.Time `json:"last_seen"`
}
