// Package executor performs service restarts and post-restart health probes.
// It ships a built-in simulation backend and an HTTP client for an external
// restart runner; both expose the same result shape.
package executor

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// SimRunner simulates restarts locally with a randomized completion delay.
type SimRunner struct {
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand

	minDelay time.Duration
	maxDelay time.Duration
}

// SimOption adjusts a SimRunner.
type SimOption func(*SimRunner)

// WithDelayRange overrides the simulated restart delay window. Tests use a
// zero range to avoid sleeping.
func WithDelayRange(min, max time.Duration) SimOption {
	return func(r *SimRunner) {
		r.minDelay = min
		r.maxDelay = max
	}
}

// NewSimRunner constructs a simulation restart backend.
func NewSimRunner(logger *slog.Logger, seed int64, opts ...SimOption) *SimRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runner := &SimRunner{
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
		minDelay: 100 * time.Millisecond,
		maxDelay: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Restart simulates a restart, honouring context cancellation during the
// simulated delay.
func (r *SimRunner) Restart(ctx context.Context, serviceID string) (models.RestartResult, error) {
	start := time.Now()

	delay := r.delay()
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return models.RestartResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	result := models.RestartResult{
		ServiceID:   serviceID,
		Status:      "success",
		TimeTaken:   time.Since(start),
		Via:         "simulation",
		CompletedAt: time.Now().UTC(),
	}

	r.logger.Debug("simulated restart",
		slog.String("service_id", serviceID),
		slog.Duration("time_taken", result.TimeTaken))

	return result, nil
}

func (r *SimRunner) delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxDelay <= r.minDelay {
		return r.minDelay
	}
	return r.minDelay + time.Duration(r.rng.Int63n(int64(r.maxDelay-r.minDelay)))
}
