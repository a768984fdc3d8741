package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"agenda/internal/config"
	"agenda/internal/logger"
	"agenda/internal/observability/tracing"
	"agenda/internal/server"
	"agenda/internal/version"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.New()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
			log.Warn("JWT_SECRET is the built-in default; set a real secret")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := version.Get()
	log.Info("starting agenda", "version", info.String(), "environment", cfg.Environment)

	shutdownTracing, err := tracing.Init(ctx, log, "agenda", info.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	return srv.Run(ctx)
}
