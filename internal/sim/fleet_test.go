package sim

import (
	"math"
	"testing"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

func TestFleetShape(t *testing.T) {
	fleet := NewFleet(42)

	instances := fleet.Instances()
	services := fleet.Services()
	if len(instances) != 6 {
		t.Fatalf("expected 6 instances, got %d", len(instances))
	}
	if len(services) != 6 {
		t.Fatalf("expected 6 services, got %d", len(services))
	}

	ids := fleet.ServiceIDs()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, want := range []string{"svc_web", "svc_api", "svc_worker"} {
		if !seen[want] {
			t.Fatalf("expected service %s in fleet", want)
		}
	}
}

func TestFleetDeterministicBySeed(t *testing.T) {
	a := NewFleet(7)
	b := NewFleet(7)

	ia, ib := a.Instances(), b.Instances()
	for i := range ia {
		if ia[i].AvgCPU() != ib[i].AvgCPU() {
			t.Fatalf("expected identical usage for seed 7, instance %d differs", i)
		}
	}
}

func TestMetricsReflectServiceStatus(t *testing.T) {
	fleet := NewFleet(42)

	degraded := fleet.Metrics("svc_api")
	if len(degraded) != 25 {
		t.Fatalf("expected 25 samples, got %d", len(degraded))
	}
	for _, p := range degraded {
		if p.LatencyMS < 600 {
			t.Fatalf("degraded service latency should be elevated, got %.2f", p.LatencyMS)
		}
		if p.ErrorRate < 0.1 {
			t.Fatalf("degraded service error rate should be elevated, got %.3f", p.ErrorRate)
		}
	}

	if pts := fleet.Metrics("svc_missing"); pts != nil {
		t.Fatalf("expected nil series for unknown service, got %d samples", len(pts))
	}
}

func TestIdleInstances(t *testing.T) {
	now := time.Now()
	instances := []models.Instance{
		{
			InstanceID:  "busy",
			CPUUsage:    []float64{50, 60},
			RAMUsage:    []float64{40, 45},
			LastRequest: now.Add(-1 * time.Hour),
		},
		{
			InstanceID:  "idle",
			CPUUsage:    []float64{1, 2},
			RAMUsage:    []float64{5, 8},
			LastRequest: now.Add(-48 * time.Hour),
		},
	}

	idle := IdleInstances(instances)
	if len(idle) != 1 || idle[0].InstanceID != "idle" {
		t.Fatalf("expected only the idle instance, got %+v", idle)
	}
	if pct := IdlePercentage(instances); pct != 50 {
		t.Fatalf("expected 50%% idle, got %.1f", pct)
	}
}

func TestEstimateMonthlyCost(t *testing.T) {
	now := time.Now()
	instances := []models.Instance{
		{
			InstanceID:  "inst_db",
			CPUUsage:    []float64{50},
			RAMUsage:    []float64{40},
			LastRequest: now,
			Tags:        map[string]string{"tier": "database", "region": "us-east-1"},
		},
		{
			InstanceID:  "inst_worker",
			CPUUsage:    []float64{1},
			RAMUsage:    []float64{5},
			LastRequest: now.Add(-72 * time.Hour),
			Tags:        map[string]string{"tier": "worker", "region": "eu-west-1"},
		},
	}

	breakdown := EstimateMonthlyCost(instances)

	wantDB := 0.35 * 24 * 30
	wantWorker := 0.10 * 24 * 30
	if math.Abs(breakdown.ByTier["database"]-wantDB) > 1e-9 {
		t.Fatalf("expected database cost %.2f, got %.2f", wantDB, breakdown.ByTier["database"])
	}
	if math.Abs(breakdown.TotalMonthly-(wantDB+wantWorker)) > 1e-9 {
		t.Fatalf("expected total %.2f, got %.2f", wantDB+wantWorker, breakdown.TotalMonthly)
	}
	if breakdown.IdleCount != 1 || math.Abs(breakdown.PotentialSavings-wantWorker) > 1e-9 {
		t.Fatalf("expected worker flagged idle with savings %.2f, got %+v", wantWorker, breakdown)
	}
}

func TestForecastRiskFactors(t *testing.T) {
	now := time.Now()
	// Small fleet so confidence drops and risk factors appear.
	instances := []models.Instance{
		{InstanceID: "a", CPUUsage: []float64{50}, RAMUsage: []float64{50}, LastRequest: now, Tags: map[string]string{"tier": "api", "region": "us-west-2"}},
	}

	fc := Forecast("2026-09", instances)
	if fc.Confidence != 0.55 {
		t.Fatalf("expected reduced confidence for small fleet, got %.2f", fc.Confidence)
	}
	if len(fc.RiskFactors) == 0 {
		t.Fatalf("expected risk factors for low-confidence forecast")
	}
	if fc.Narrative == "" {
		t.Fatalf("expected non-empty narrative")
	}
}
