package utils

import (
	"sort"
	"sync"
	"time"
)

// CycleStats keeps a bounded window of scan-cycle durations plus running
// action counters, so the engine can report p95 cycle latency and restart
// failure rates without unbounded growth.
type CycleStats struct {
	mu        sync.RWMutex
	durations []time.Duration
	maxSize   int

	cycles      int
	restarts    int
	escalations int
}

// NewCycleStats creates a tracker bounded to maxSize duration samples.
func NewCycleStats(maxSize int) *CycleStats {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &CycleStats{maxSize: maxSize}
}

// ObserveCycle records one completed scan cycle.
func (s *CycleStats) ObserveCycle(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycles++
	s.durations = append(s.durations, d)
	if len(s.durations) > s.maxSize {
		copy(s.durations[0:], s.durations[1:])
		s.durations = s.durations[:s.maxSize]
	}
}

// ObserveAction records the outcome of one remediation attempt.
func (s *CycleStats) ObserveAction(escalated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restarts++
	if escalated {
		s.escalations++
	}
}

// Cycles returns the number of completed scan cycles.
func (s *CycleStats) Cycles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles
}

// Restarts returns total restart attempts and how many escalated.
func (s *CycleStats) Restarts() (total, escalated int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restarts, s.escalations
}

// FailureRate returns escalations as a percentage of restart attempts,
// or zero when nothing has been attempted.
func (s *CycleStats) FailureRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.restarts == 0 {
		return 0
	}
	return float64(s.escalations) / float64(s.restarts) * 100
}

// Percentile returns the percentile (0-100) cycle duration from the window.
func (s *CycleStats) Percentile(p float64) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.durations) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), s.durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	index := int((p / 100.0) * float64(len(sorted)-1))
	return sorted[index]
}
