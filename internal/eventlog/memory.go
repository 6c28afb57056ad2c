// Package eventlog stores remediation events. The engine is the sole
// writer; reporting and API layers read concurrently.
package eventlog

import (
	"sync"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// Memory is an append-only in-memory event store.
type Memory struct {
	mu     sync.RWMutex
	events []models.RemediationEvent
}

// NewMemory constructs an empty in-memory event log.
func NewMemory() *Memory {
	return &Memory{}
}

// Append adds an event to the log.
func (m *Memory) Append(event models.RemediationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// List returns all events in append order.
func (m *Memory) List() ([]models.RemediationEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.RemediationEvent(nil), m.events...), nil
}

// Clear discards all events. Intended for demos and tests.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Close is a no-op for the in-memory log.
func (m *Memory) Close() error { return nil }
