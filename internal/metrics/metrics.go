package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	scanCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sentinel_ops",
			Name:      "scan_cycles_total",
			Help:      "Total number of completed remediation scan cycles.",
		},
	)

	scanCycleSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sentinel_ops",
			Name:      "scan_cycle_seconds",
			Help:      "Scan cycle latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	remediationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel_ops",
			Name:      "remediations_total",
			Help:      "Total remediation events, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	restartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel_ops",
			Name:      "restarts_total",
			Help:      "Total restart attempts, partitioned by status.",
		},
		[]string{"status"},
	)

	hygieneScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sentinel_ops",
			Name:      "hygiene_score",
			Help:      "Most recently computed infrastructure hygiene score (0-100).",
		},
	)
)

// Register attaches sentinel-ops collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		scanCyclesTotal,
		scanCycleSeconds,
		remediationsTotal,
		restartsTotal,
		hygieneScore,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveScanCycle records one completed scan cycle.
func ObserveScanCycle(duration time.Duration) {
	scanCyclesTotal.Inc()
	if duration < 0 {
		duration = 0
	}
	scanCycleSeconds.Observe(duration.Seconds())
}

// ObserveRemediation counts one remediation event by outcome.
func ObserveRemediation(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	remediationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRestart counts one restart attempt by executor status.
func ObserveRestart(status string) {
	if status == "" {
		status = "unknown"
	}
	restartsTotal.WithLabelValues(status).Inc()
}

// SetHygieneScore publishes the latest composite hygiene score.
func SetHygieneScore(score float64) {
	hygieneScore.Set(score)
}
