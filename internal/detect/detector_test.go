package detect

import (
	"context"
	"testing"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

type fakeProvider struct {
	series map[string][]models.MetricPoint
}

func (f *fakeProvider) Metrics(serviceID string) []models.MetricPoint {
	return f.series[serviceID]
}

func flatSeries(latencyMS, errorRate float64, n int) []models.MetricPoint {
	now := time.Now()
	points := make([]models.MetricPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, models.MetricPoint{
			Timestamp: now.Add(time.Duration(i) * time.Minute),
			LatencyMS: latencyMS,
			ErrorRate: errorRate,
		})
	}
	return points
}

func TestAssessSeverityGrades(t *testing.T) {
	cases := []struct {
		name      string
		latencyMS float64
		errorRate float64
		want      models.Severity
	}{
		{"quiet", 100, 0.01, models.SeverityNone},
		{"low latency bump", 350, 0.01, models.SeverityLow},
		{"medium errors", 100, 0.15, models.SeverityMedium},
		{"high latency", 1200, 0.01, models.SeverityHigh},
		{"critical errors", 100, 0.5, models.SeverityCritical},
		{"critical latency", 2500, 0.01, models.SeverityCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeProvider{series: map[string][]models.MetricPoint{
				"svc": flatSeries(tc.latencyMS, tc.errorRate, 10),
			}}
			detector := NewDetector(nil, provider)

			assessment, err := detector.Assess(context.Background(), "svc")
			if err != nil {
				t.Fatalf("assess: %v", err)
			}
			if assessment.Severity != tc.want {
				t.Fatalf("expected severity %s, got %s", tc.want, assessment.Severity)
			}
			if assessment.HasAnomaly != (tc.want != models.SeverityNone) {
				t.Fatalf("has_anomaly must hold iff severity != none; severity=%s has_anomaly=%v",
					assessment.Severity, assessment.HasAnomaly)
			}
			if len(assessment.Evidence) == 0 {
				t.Fatalf("expected evidence strings")
			}
		})
	}
}

func TestAssessNoMetrics(t *testing.T) {
	detector := NewDetector(nil, &fakeProvider{series: map[string][]models.MetricPoint{}})

	assessment, err := detector.Assess(context.Background(), "svc_unknown")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if assessment.HasAnomaly || assessment.Severity != models.SeverityNone {
		t.Fatalf("expected no anomaly for missing metrics, got %+v", assessment)
	}
	if assessment.Reason == "" {
		t.Fatalf("expected a reason even without metrics")
	}
}

func TestAnomalyTypeDominantFactor(t *testing.T) {
	provider := &fakeProvider{series: map[string][]models.MetricPoint{
		"slow":  flatSeries(1500, 0.01, 5),
		"noisy": flatSeries(100, 0.3, 5),
	}}
	detector := NewDetector(nil, provider)

	slow, _ := detector.Assess(context.Background(), "slow")
	if slow.AnomalyType != "latency_spike" {
		t.Fatalf("expected latency_spike, got %q", slow.AnomalyType)
	}

	noisy, _ := detector.Assess(context.Background(), "noisy")
	if noisy.AnomalyType != "error_surge" {
		t.Fatalf("expected error_surge, got %q", noisy.AnomalyType)
	}
}

func TestRecommendedActionFollowsGate(t *testing.T) {
	provider := &fakeProvider{series: map[string][]models.MetricPoint{
		"hot":  flatSeries(1200, 0.01, 5),
		"warm": flatSeries(550, 0.01, 5),
	}}
	detector := NewDetector(nil, provider)

	hot, _ := detector.Assess(context.Background(), "hot")
	if hot.RecommendedAction != "restart" {
		t.Fatalf("high severity should recommend restart, got %q", hot.RecommendedAction)
	}

	warm, _ := detector.Assess(context.Background(), "warm")
	if warm.RecommendedAction != "monitor" {
		t.Fatalf("medium severity should recommend monitor, got %q", warm.RecommendedAction)
	}
}
