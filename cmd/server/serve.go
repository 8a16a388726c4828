package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrilink/marketplace/internal/platform/config"
	"github.com/agrilink/marketplace/internal/platform/httpserver"
	"github.com/agrilink/marketplace/internal/platform/logging"
	"github.com/agrilink/marketplace/internal/platform/telemetry"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	logger, flush, err := logging.New(logging.Config{
		Mode:     cfg.Log.Mode,
		Level:    cfg.Log.Level,
		Redact:   cfg.Log.Redact,
		HashSalt: cfg.Log.HashSalt,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	slog.SetDefault(logger)
	return logger, flush, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, flush, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	logger.Info("starting agrilink", slog.String("version", version), slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     version,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
		SampleRatio: cfg.Telemetry.SampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire application", slog.Any("error", err))
		return err
	}
	defer a.Close()

	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.IdleTimeout = cfg.Server.IdleTimeout

	server := httpserver.New(serverCfg, a.handler(), logger)
	if err := server.Run(ctx, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server error", slog.Any("error", err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
