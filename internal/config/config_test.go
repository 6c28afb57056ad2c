package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected default server address %q", cfg.Server.Address)
	}
	if cfg.Engine.CheckInterval != 30*time.Second {
		t.Fatalf("unexpected default check interval %s", cfg.Engine.CheckInterval)
	}
	if cfg.Engine.HealthThreshold != 0.7 {
		t.Fatalf("unexpected default health threshold %f", cfg.Engine.HealthThreshold)
	}
	if cfg.EventLog.Backend != "memory" {
		t.Fatalf("unexpected default event log backend %q", cfg.EventLog.Backend)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: ":9090"
engine:
  checkInterval: 5s
  healthThreshold: 0.8
  startEnabled: true
eventLog:
  backend: badger
  path: /tmp/sentinel-events
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected address override, got %q", cfg.Server.Address)
	}
	if cfg.Engine.CheckInterval != 5*time.Second {
		t.Fatalf("expected 5s interval, got %s", cfg.Engine.CheckInterval)
	}
	if !cfg.Engine.StartEnabled {
		t.Fatalf("expected startEnabled true")
	}
	if cfg.EventLog.Backend != "badger" || cfg.EventLog.Path == "" {
		t.Fatalf("expected badger backend with path, got %+v", cfg.EventLog)
	}
	// Defaults survive partial files.
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("expected default metrics address, got %q", cfg.Server.MetricsAddress)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_OPS_SERVER_ADDRESS", ":7070")
	t.Setenv("SENTINEL_OPS_CHECK_INTERVAL", "2s")
	t.Setenv("SENTINEL_OPS_LOG_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Fatalf("expected env address override, got %q", cfg.Server.Address)
	}
	if cfg.Engine.CheckInterval != 2*time.Second {
		t.Fatalf("expected env interval override, got %s", cfg.Engine.CheckInterval)
	}
	if !cfg.Logging.JSON {
		t.Fatalf("expected JSON logging enabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("SENTINEL_OPS_HEALTH_THRESHOLD", "1.5")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error for out-of-range threshold")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SENTINEL_OPS_EVENTLOG_BACKEND", "postgres")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error for unknown backend")
	}
}
