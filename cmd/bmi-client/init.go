package main

import (
	"context"
	"errors"
	"fmt"

	"bmi-client/internal/config"
	"bmi-client/internal/coordinator"
	"bmi-client/internal/observability"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP providers when telemetry is enabled and
// always registers the coordinator's instruments. Add new domain InitMetrics
// calls here as the project grows.
func initTelemetry(ctx context.Context, cfg config.Config) (shutdownFunc, error) {
	var shutdowns []shutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if cfg.Telemetry {
		// Tracing
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			return shutdown, fmt.Errorf("init tracing: %w", err)
		}
		shutdowns = append(shutdowns, traceShutdown)

		// Metrics
		metricShutdown, err := observability.InitMetrics(ctx)
		if err != nil {
			return shutdown, fmt.Errorf("init metrics: %w", err)
		}
		shutdowns = append(shutdowns, metricShutdown)

		// Logs
		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			return shutdown, fmt.Errorf("init log export: %w", err)
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	if err := coordinator.InitMetrics(); err != nil {
		return shutdown, err
	}

	return shutdown, nil
}
