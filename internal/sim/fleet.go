// Package sim generates a synthetic infrastructure fleet: instances,
// services, and per-service telemetry. It stands in for real cloud-provider
// inventory and metrics APIs.
package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// Idle-instance thresholds: low CPU, low RAM, and no request within the window.
const (
	idleCPUThreshold = 5.0
	idleRAMThreshold = 15.0
	idleHours        = 24
)

// Fleet produces a stable synthetic fleet. Instances and services are fixed
// per Fleet; metric series are regenerated on each call from the seeded
// source, so repeated runs with the same seed produce the same telemetry.
type Fleet struct {
	mu        sync.Mutex
	rng       *rand.Rand
	instances []models.Instance
	services  []models.Service
}

// NewFleet builds a fleet from the given seed. A zero seed selects a
// time-based seed.
func NewFleet(seed int64) *Fleet {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Fleet{rng: rand.New(rand.NewSource(seed))}
	f.generate()
	return f
}

type instanceSpec struct {
	name   string
	region string
	env    string
	tier   string
}

type serviceSpec struct {
	id     string
	name   string
	status string
}

func (f *Fleet) generate() {
	now := time.Now()

	instanceSpecs := []instanceSpec{
		{"web-server-1", "us-east-1", "prod", "frontend"},
		{"web-server-2", "us-east-1", "prod", "frontend"},
		{"api-server-1", "us-west-2", "prod", "api"},
		{"db-server-1", "us-east-1", "prod", "database"},
		{"cache-server-1", "us-east-1", "prod", "cache"},
		{"worker-1", "eu-west-1", "staging", "worker"},
	}

	for _, spec := range instanceSpecs {
		idle := spec.tier == "worker" || spec.env == "staging"

		cpu := make([]float64, 24)
		ram := make([]float64, 24)
		var lastRequest time.Time
		if idle {
			for i := range cpu {
				cpu[i] = f.uniform(0.1, 2.0)
				ram[i] = f.uniform(5, 15)
			}
			lastRequest = now.Add(-time.Duration(f.intn(25, 168)) * time.Hour)
		} else {
			for i := range cpu {
				cpu[i] = f.uniform(5, 80)
				ram[i] = f.uniform(10, 90)
			}
			lastRequest = now.Add(-time.Duration(f.intn(1, 72)) * time.Hour)
		}

		f.instances = append(f.instances, models.Instance{
			InstanceID:  "inst_" + spec.name,
			CPUUsage:    cpu,
			RAMUsage:    ram,
			LastRequest: lastRequest,
			Tags: map[string]string{
				"name":   spec.name,
				"region": spec.region,
				"env":    spec.env,
				"tier":   spec.tier,
			},
		})
	}

	serviceSpecs := []serviceSpec{
		{"svc_web", "web-service", "healthy"},
		{"svc_web_alt", "web-service-alt", "healthy"},
		{"svc_api", "api-service", "degraded"},
		{"svc_db", "database", "healthy"},
		{"svc_cache", "cache", "healthy"},
		{"svc_worker", "worker-service", "stopped"},
	}

	for i, spec := range serviceSpecs {
		f.services = append(f.services, models.Service{
			ServiceID:   spec.id,
			InstanceID:  f.instances[i].InstanceID,
			Name:        spec.name,
			Status:      spec.status,
			LastRestart: now.Add(-time.Duration(f.intn(1, 168)) * time.Hour),
		})
	}
}

// Instances returns a copy of the fleet's instances.
func (f *Fleet) Instances() []models.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Instance(nil), f.instances...)
}

// Services returns a copy of the fleet's services.
func (f *Fleet) Services() []models.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Service(nil), f.services...)
}

// ServiceIDs lists the identifiers of all known services.
func (f *Fleet) ServiceIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.services))
	for _, svc := range f.services {
		ids = append(ids, svc.ServiceID)
	}
	return ids
}

// Metrics generates a 25-sample hourly telemetry series for the service.
// Services the fleet knows to be degraded or stopped produce elevated
// latency and error rates so downstream detection has signal to find.
// Unknown service ids yield an empty series.
func (f *Fleet) Metrics(serviceID string) []models.MetricPoint {
	f.mu.Lock()
	defer f.mu.Unlock()

	var status string
	found := false
	for _, svc := range f.services {
		if svc.ServiceID == serviceID {
			status = svc.Status
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	base := time.Now().Add(-24 * time.Hour)
	points := make([]models.MetricPoint, 0, 25)
	for hour := 0; hour < 25; hour++ {
		point := models.MetricPoint{
			Timestamp: base.Add(time.Duration(hour) * time.Hour),
			CPU:       f.uniform(5, 85),
			RAM:       f.uniform(15, 90),
		}
		switch status {
		case "degraded":
			point.LatencyMS = f.uniform(600, 1500)
			point.ErrorRate = f.uniform(0.1, 0.3)
		case "stopped":
			point.LatencyMS = f.uniform(1000, 3000)
			point.ErrorRate = f.uniform(0.3, 0.8)
		default:
			point.LatencyMS = f.uniform(10, 400)
			if f.rng.Float64() > 0.9 {
				point.ErrorRate = f.uniform(0.1, 0.3)
			} else {
				point.ErrorRate = f.uniform(0, 0.05)
			}
		}
		points = append(points, point)
	}
	return points
}

// Summary aggregates fleet counts for reporting.
func (f *Fleet) Summary() models.FleetSummary {
	instances := f.Instances()
	services := f.Services()

	healthy := 0
	for _, svc := range services {
		if svc.Status == "healthy" {
			healthy++
		}
	}

	return models.FleetSummary{
		TotalInstances:  len(instances),
		IdleInstances:   len(IdleInstances(instances)),
		TotalServices:   len(services),
		HealthyServices: healthy,
		GeneratedAt:     time.Now().UTC(),
	}
}

// IdleInstances filters instances considered idle: average CPU below 5%,
// average RAM below 15%, and no request within the last 24 hours.
func IdleInstances(instances []models.Instance) []models.Instance {
	var idle []models.Instance
	for _, inst := range instances {
		sinceRequest := time.Since(inst.LastRequest).Hours()
		if inst.AvgCPU() < idleCPUThreshold && inst.AvgRAM() < idleRAMThreshold && sinceRequest > idleHours {
			idle = append(idle, inst)
		}
	}
	return idle
}

// IdlePercentage returns the share of idle instances as a 0-100 value.
func IdlePercentage(instances []models.Instance) float64 {
	if len(instances) == 0 {
		return 0
	}
	return float64(len(IdleInstances(instances))) / float64(len(instances)) * 100
}

func (f *Fleet) uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

func (f *Fleet) intn(lo, hi int) int {
	return lo + f.rng.Intn(hi-lo+1)
}
