package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the sentinel-ops service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Engine     EngineConfig     `yaml:"engine"`
	EventLog   EventLogConfig   `yaml:"eventLog"`
	Simulation SimulationConfig `yaml:"simulation"`
	Runner     RunnerConfig     `yaml:"runner"`
}

// ServerConfig controls the HTTP API and metrics listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// EngineConfig tunes the auto-remediation loop.
type EngineConfig struct {
	CheckInterval   time.Duration `yaml:"checkInterval"`
	HealthThreshold float64       `yaml:"healthThreshold"`
	StartEnabled    bool          `yaml:"startEnabled"`
}

// EventLogConfig selects the remediation event store.
type EventLogConfig struct {
	Backend string `yaml:"backend"` // "memory" or "badger"
	Path    string `yaml:"path"`
}

// SimulationConfig tunes the synthetic fleet generator.
type SimulationConfig struct {
	Seed int64 `yaml:"seed"` // 0 means time-based
}

// RunnerConfig configures the remote restart runner. When BaseURL is empty
// restarts are executed by the built-in simulation backend.
type RunnerConfig struct {
	BaseURL     string        `yaml:"baseURL"`
	RestartPath string        `yaml:"restartPath"`
	HealthPath  string        `yaml:"healthPath"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SENTINEL_OPS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Engine: EngineConfig{
			CheckInterval:   30 * time.Second,
			HealthThreshold: 0.7,
			StartEnabled:    false,
		},
		EventLog: EventLogConfig{Backend: "memory"},
		Runner: RunnerConfig{
			RestartPath: "/api/v1/runner/restart",
			HealthPath:  "/api/v1/runner/health",
			Timeout:     5 * time.Second,
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Engine.CheckInterval <= 0 {
		return fmt.Errorf("engine checkInterval must be positive, got %s", cfg.Engine.CheckInterval)
	}
	if cfg.Engine.HealthThreshold < 0 || cfg.Engine.HealthThreshold > 1 {
		return fmt.Errorf("engine healthThreshold must be in [0,1], got %f", cfg.Engine.HealthThreshold)
	}
	switch cfg.EventLog.Backend {
	case "", "memory":
	case "badger":
		if cfg.EventLog.Path == "" {
			return fmt.Errorf("eventLog path is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown eventLog backend %q", cfg.EventLog.Backend)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENTINEL_OPS_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SENTINEL_OPS_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SENTINEL_OPS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SENTINEL_OPS_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SENTINEL_OPS_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Engine.CheckInterval = d
		}
	}
	if v := os.Getenv("SENTINEL_OPS_HEALTH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.HealthThreshold = f
		}
	}
	if v := os.Getenv("SENTINEL_OPS_START_ENABLED"); v != "" {
		cfg.Engine.StartEnabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SENTINEL_OPS_EVENTLOG_BACKEND"); v != "" {
		cfg.EventLog.Backend = v
	}
	if v := os.Getenv("SENTINEL_OPS_EVENTLOG_PATH"); v != "" {
		cfg.EventLog.Path = v
	}
	if v := os.Getenv("SENTINEL_OPS_SIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulation.Seed = n
		}
	}
	if v := os.Getenv("SENTINEL_OPS_RUNNER_URL"); v != "" {
		cfg.Runner.BaseURL = v
	}
	if v := os.Getenv("SENTINEL_OPS_RUNNER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Runner.Timeout = d
		}
	}
}
