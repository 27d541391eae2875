package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bmi-client/internal/client"
	"bmi-client/internal/config"
	"bmi-client/internal/coordinator"
	"bmi-client/internal/observability"
	"bmi-client/internal/server"
	"bmi-client/internal/ui/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// options holds the persistent flags; empty values fall back to the
// environment.
type options struct {
	endpoint string
	diagAddr string
	debug    bool
}

// app is what every command needs once configuration is resolved.
type app struct {
	cfg    config.Config
	apiURL string
	coord  *coordinator.Coordinator
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "bmi-client",
		Short:        "Terminal client for the BMI service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.cfg.DiagAddr != "" {
				stop := startDiagnostics(a.cfg.DiagAddr, a.coord)
				defer stop()
			}

			return tui.Run(cmd.Context(), tui.Deps{
				Controller: a.coord,
				APIURL:     a.apiURL,
				Logger:     observability.Logger,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "BMI service base URL (default $BMI_ENDPOINT or "+config.DefaultEndpoint+")")
	cmd.PersistentFlags().StringVar(&opts.diagAddr, "diag-addr", "", "serve /health, /metrics and /status on this address")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to the log file")

	cmd.AddCommand(newCalcCmd(opts))
	return cmd
}

func loadConfig(opts *options) (config.Config, error) {
	if err := loadDotEnv(); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.diagAddr != "" {
		cfg.DiagAddr = opts.diagAddr
	}
	if opts.debug {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// bootstrap resolves configuration, starts logging and telemetry, and builds
// the coordinator. cleanup flushes everything bootstrap started.
func bootstrap(ctx context.Context, opts *options) (*app, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	// Logger
	if err := observability.InitLogger(observability.LoggerConfig{Path: cfg.LogFile, Debug: cfg.Debug}); err != nil {
		return nil, nil, err
	}

	// Tracing, metrics, log export
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	cleanup := func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := telemetryShutdown(sctx); err != nil {
			observability.Logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
		observability.SyncLogger()
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	apiURL, err := cfg.APIURL()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	coord := coordinator.New(client.New(), apiURL)

	if err := observability.RegisterGaugeFunc("bmi_client_in_flight", "1 while a calculate request is outstanding", coord.InFlight); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register in-flight gauge: %w", err)
	}

	observability.Logger.Info("client started",
		zap.String("api_url", apiURL),
		zap.Bool("telemetry", cfg.Telemetry),
		zap.String("diag_addr", cfg.DiagAddr),
	)

	return &app{cfg: cfg, apiURL: apiURL, coord: coord}, cleanup, nil
}

// startDiagnostics serves the diagnostics router until the returned stop
// function is called.
func startDiagnostics(addr string, coord *coordinator.Coordinator) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(coord),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("diagnostics server started", zap.String("addr", addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Error("diagnostics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			observability.Logger.Warn("diagnostics server shutdown failed", zap.Error(err))
		}
	}
}
