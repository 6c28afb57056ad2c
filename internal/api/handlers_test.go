package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelstack/sentinel-ops/internal/engine"
	"github.com/sentinelstack/sentinel-ops/internal/eventlog"
	"github.com/sentinelstack/sentinel-ops/internal/models"
	"github.com/sentinelstack/sentinel-ops/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testFleet struct {
	serviceIDs []string
	instances  []models.Instance
}

func (f *testFleet) Instances() []models.Instance { return f.instances }
func (f *testFleet) Services() []models.Service   { return nil }
func (f *testFleet) ServiceIDs() []string         { return f.serviceIDs }
func (f *testFleet) Summary() models.FleetSummary {
	return models.FleetSummary{
		TotalInstances: len(f.instances),
		TotalServices:  len(f.serviceIDs),
		GeneratedAt:    time.Now().UTC(),
	}
}

type testSource struct {
	assessments map[string]models.AnomalyAssessment
}

func (s *testSource) Assess(_ context.Context, serviceID string) (models.AnomalyAssessment, error) {
	if a, ok := s.assessments[serviceID]; ok {
		return a, nil
	}
	return models.AnomalyAssessment{ServiceID: serviceID, Severity: models.SeverityNone}, nil
}

type testExecutor struct{}

func (testExecutor) Restart(_ context.Context, serviceID string) (models.RestartResult, error) {
	return models.RestartResult{
		ServiceID:   serviceID,
		Status:      "success",
		TimeTaken:   500 * time.Millisecond,
		Via:         "simulation",
		CompletedAt: time.Now().UTC(),
	}, nil
}

type testProber struct {
	health float64
}

func (p testProber) ProbeHealth(_ context.Context, _ string) (float64, error) {
	return p.health, nil
}

func newTestRouter(t *testing.T, source *testSource, health float64) *gin.Engine {
	t.Helper()

	fleet := &testFleet{
		serviceIDs: []string{"svc_web", "svc_api"},
		instances: []models.Instance{
			{InstanceID: "i-1", CPUUsage: []float64{50}, RAMUsage: []float64{40}, LastRequest: time.Now()},
		},
	}
	log := eventlog.NewMemory()
	prober := testProber{health: health}
	remediator := engine.NewRemediator(nil, source, testExecutor{}, prober, log, fleet, engine.Options{
		HealthThreshold: 0.7,
		CheckInterval:   time.Hour,
		StartEnabled:    true,
	})
	ops := services.NewOpsService(nil, remediator, source, testExecutor{}, prober, log, fleet, 0.7)

	router := gin.New()
	NewHandlers(nil, ops).Register(router)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &testSource{}, 1)

	w := doRequest(router, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestScanAndEventsFlow(t *testing.T) {
	source := &testSource{assessments: map[string]models.AnomalyAssessment{
		"svc_web": {
			ServiceID:   "svc_web",
			HasAnomaly:  true,
			Severity:    models.SeverityCritical,
			Reason:      "Critical latency degradation",
			AnomalyType: "latency_spike",
		},
	}}
	router := newTestRouter(t, source, 0.9)

	w := doRequest(router, http.MethodPost, "/v1/remediation/scan")
	require.Equal(t, http.StatusOK, w.Code)

	var scanResp struct {
		Count  int                       `json:"count"`
		Events []models.RemediationEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scanResp))
	require.Equal(t, 1, scanResp.Count)
	assert.Equal(t, models.ActionRestart, scanResp.Events[0].ActionTaken)
	assert.False(t, scanResp.Events[0].Escalated)

	w = doRequest(router, http.MethodGet, "/v1/events")
	require.Equal(t, http.StatusOK, w.Code)
	var eventsResp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eventsResp))
	assert.Equal(t, 1, eventsResp.Count)

	w = doRequest(router, http.MethodGet, "/v1/reports")
	require.Equal(t, http.StatusOK, w.Code)
	var reportsResp struct {
		Reports []models.IncidentReport `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reportsResp))
	require.Len(t, reportsResp.Reports, 1)
	assert.Equal(t, models.OutcomeResolved, reportsResp.Reports[0].Outcome)
	assert.NotEmpty(t, reportsResp.Reports[0].RootCause)
}

func TestEngineToggleEndpoints(t *testing.T) {
	router := newTestRouter(t, &testSource{}, 1)

	w := doRequest(router, http.MethodPost, "/v1/remediation/disable")
	require.Equal(t, http.StatusOK, w.Code)

	var status services.EngineStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Enabled)

	w = doRequest(router, http.MethodPost, "/v1/remediation/enable")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Enabled)

	w = doRequest(router, http.MethodGet, "/v1/remediation/status")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestManualRestartEndpoint(t *testing.T) {
	router := newTestRouter(t, &testSource{}, 0.95)

	w := doRequest(router, http.MethodPost, "/v1/services/svc_web/restart")
	require.Equal(t, http.StatusOK, w.Code)

	var event models.RemediationEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, "svc_web", event.ServiceID)
	assert.Equal(t, models.ActionRestart, event.ActionTaken)

	w = doRequest(router, http.MethodPost, "/v1/services/svc_ghost/restart")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReEnableEndpoint(t *testing.T) {
	source := &testSource{assessments: map[string]models.AnomalyAssessment{
		"svc_web": {
			ServiceID:  "svc_web",
			HasAnomaly: true,
			Severity:   models.SeverityCritical,
			Reason:     "Critical error rate",
		},
	}}
	router := newTestRouter(t, source, 0.2)

	// Escalation disables svc_web.
	doRequest(router, http.MethodPost, "/v1/remediation/scan")

	w := doRequest(router, http.MethodGet, "/v1/remediation/disabled")
	require.Equal(t, http.StatusOK, w.Code)
	var disabled struct {
		DisabledServices []string `json:"disabled_services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &disabled))
	require.Equal(t, []string{"svc_web"}, disabled.DisabledServices)

	w = doRequest(router, http.MethodPost, "/v1/services/svc_web/enable")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/v1/remediation/disabled")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &disabled))
	assert.Empty(t, disabled.DisabledServices)

	w = doRequest(router, http.MethodPost, "/v1/services/svc_ghost/enable")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHygieneEndpoint(t *testing.T) {
	router := newTestRouter(t, &testSource{}, 1)

	w := doRequest(router, http.MethodGet, "/v1/hygiene")
	require.Equal(t, http.StatusOK, w.Code)

	var score models.HygieneScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.GreaterOrEqual(t, score.Score, 0.0)
	assert.LessOrEqual(t, score.Score, 100.0)
	assert.NotEmpty(t, score.Status)
	assert.Len(t, score.Breakdown, 4)
	assert.NotEmpty(t, score.Suggestions)
}

func TestFleetEndpoints(t *testing.T) {
	router := newTestRouter(t, &testSource{}, 1)

	w := doRequest(router, http.MethodGet, "/v1/fleet/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.FleetSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalInstances)

	w = doRequest(router, http.MethodGet, "/v1/fleet/forecast")
	require.Equal(t, http.StatusOK, w.Code)
	var forecast models.CostForecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecast))
	assert.Greater(t, forecast.Confidence, 0.0)
}

func TestPatternsEndpoint(t *testing.T) {
	source := &testSource{assessments: map[string]models.AnomalyAssessment{
		"svc_web": {
			ServiceID:   "svc_web",
			HasAnomaly:  true,
			Severity:    models.SeverityHigh,
			Reason:      "High latency",
			AnomalyType: "latency_spike",
		},
	}}
	router := newTestRouter(t, source, 0.9)
	doRequest(router, http.MethodPost, "/v1/remediation/scan")

	w := doRequest(router, http.MethodGet, "/v1/patterns")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count    int                     `json:"count"`
		Patterns []models.ServicePattern `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "svc_web", resp.Patterns[0].ServiceID)
}
