package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelstack/sentinel-ops/internal/config"
	"github.com/sentinelstack/sentinel-ops/internal/detect"
	"github.com/sentinelstack/sentinel-ops/internal/engine"
	"github.com/sentinelstack/sentinel-ops/internal/eventlog"
	"github.com/sentinelstack/sentinel-ops/internal/executor"
	"github.com/sentinelstack/sentinel-ops/internal/services"
	"github.com/sentinelstack/sentinel-ops/internal/sim"
	"github.com/sentinelstack/sentinel-ops/internal/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sentinel-ops",
	Short: "Auto-remediation engine and hygiene scoring for simulated cloud fleets",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	rootCmd.AddCommand(serveCmd, scanCmd, hygieneCmd)
}

// stack bundles everything a command needs after wiring.
type stack struct {
	cfg        *config.Config
	logger     *slog.Logger
	fleet      *sim.Fleet
	remediator *engine.Remediator
	ops        *services.OpsService
	closers    []io.Closer
}

func (s *stack) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("close failed", slog.Any("error", err))
		}
	}
}

// buildStack loads configuration and wires the full component graph.
func buildStack() (*stack, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	fleet := sim.NewFleet(cfg.Simulation.Seed)
	detector := detect.NewDetector(logger, fleet)

	var (
		restarts engine.RestartExecutor
		prober   engine.HealthProber
	)
	if cfg.Runner.BaseURL != "" {
		remote := executor.NewRemoteRunner(
			cfg.Runner.BaseURL,
			cfg.Runner.RestartPath,
			cfg.Runner.HealthPath,
			cfg.Runner.Timeout,
		)
		restarts = remote
		prober = remote
		logger.Info("using remote runner", slog.String("base_url", cfg.Runner.BaseURL))
	} else {
		restarts = executor.NewSimRunner(logger, cfg.Simulation.Seed)
		prober = executor.NewProber(logger, fleet)
	}

	var events engine.EventLog
	var closers []io.Closer
	switch cfg.EventLog.Backend {
	case "badger":
		store, err := eventlog.OpenBadger(cfg.EventLog.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open event log: %w", err)
		}
		events = store
		closers = append(closers, store)
	default:
		events = eventlog.NewMemory()
	}

	remediator := engine.NewRemediator(logger, detector, restarts, prober, events, fleet, engine.Options{
		HealthThreshold: cfg.Engine.HealthThreshold,
		CheckInterval:   cfg.Engine.CheckInterval,
		StartEnabled:    cfg.Engine.StartEnabled,
	})
	ops := services.NewOpsService(logger, remediator, detector, restarts, prober, events, fleet, cfg.Engine.HealthThreshold)

	return &stack{
		cfg:        cfg,
		logger:     logger,
		fleet:      fleet,
		remediator: remediator,
		ops:        ops,
		closers:    closers,
	}, nil
}
