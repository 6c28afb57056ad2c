package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

// RemoteRunner executes restarts and health probes against an external
// restart runner over HTTP/JSON.
type RemoteRunner struct {
	baseURL     string
	restartPath string
	healthPath  string
	httpClient  *http.Client
}

// NewRemoteRunner constructs a client targeting the configured runner.
func NewRemoteRunner(baseURL, restartPath, healthPath string, timeout time.Duration) *RemoteRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteRunner{
		baseURL:     strings.TrimRight(baseURL, "/"),
		restartPath: restartPath,
		healthPath:  healthPath,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Restart asks the runner to restart the service and waits for completion.
func (c *RemoteRunner) Restart(ctx context.Context, serviceID string) (models.RestartResult, error) {
	if c == nil {
		return models.RestartResult{}, fmt.Errorf("runner client not initialised")
	}
	if c.baseURL == "" {
		return models.RestartResult{}, fmt.Errorf("runner base URL not configured")
	}

	payload := map[string]any{"service_id": serviceID}

	var response struct {
		ServiceID   string    `json:"service_id"`
		Status      string    `json:"status"`
		TimeTakenMS float64   `json:"time_taken_ms"`
		Via         string    `json:"via"`
		CompletedAt time.Time `json:"completed_at"`
	}

	if err := c.postJSON(ctx, c.resolvePath(c.restartPath), payload, &response); err != nil {
		return models.RestartResult{}, fmt.Errorf("runner restart request failed: %w", err)
	}

	result := models.RestartResult{
		ServiceID:   firstNonEmpty(response.ServiceID, serviceID),
		Status:      firstNonEmpty(response.Status, "unknown"),
		TimeTaken:   time.Duration(response.TimeTakenMS * float64(time.Millisecond)),
		Via:         firstNonEmpty(response.Via, "runner"),
		CompletedAt: response.CompletedAt,
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}
	return result, nil
}

// ProbeHealth asks the runner for the service's current health in [0,1].
func (c *RemoteRunner) ProbeHealth(ctx context.Context, serviceID string) (float64, error) {
	if c == nil {
		return 0, fmt.Errorf("runner client not initialised")
	}
	if c.baseURL == "" {
		return 0, fmt.Errorf("runner base URL not configured")
	}

	payload := map[string]any{"service_id": serviceID}

	var response struct {
		Health float64 `json:"health"`
	}

	if err := c.postJSON(ctx, c.resolvePath(c.healthPath), payload, &response); err != nil {
		return 0, fmt.Errorf("runner health request failed: %w", err)
	}

	health := response.Health
	if health < 0 {
		health = 0
	}
	if health > 1 {
		health = 1
	}
	return health, nil
}

func (c *RemoteRunner) resolvePath(p string) string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

func (c *RemoteRunner) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	if endpoint == "" {
		return fmt.Errorf("empty endpoint")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runner returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
