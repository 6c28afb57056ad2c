package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sentinelstack/sentinel-ops/internal/api"
	"github.com/sentinelstack/sentinel-ops/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the remediation engine with the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()
	logger := st.logger

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	server := api.NewServer(st.cfg.Server, logger, api.NewHandlers(logger, st.ops))

	var metricsServer *http.Server
	if st.cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         st.cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st.remediator.Start()
	logger.Info("starting sentinel-ops",
		slog.String("address", st.cfg.Server.Address),
		slog.Bool("auto_remediation", st.remediator.IsEnabled()))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Start()
	})
	if metricsServer != nil {
		group.Go(func() error {
			logger.Info("metrics server listening", slog.String("address", st.cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")

		st.remediator.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), st.cfg.Server.GracefulTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)

		if metricsServer != nil {
			metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelMetrics()
			if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server shutdown", slog.Any("error", err))
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("sentinel-ops stopped")
	return nil
}
