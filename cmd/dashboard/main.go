package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/vhi-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/vhi-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/vhi-dashboard/internal/cache"
	"github.com/couchcryptid/vhi-dashboard/internal/config"
	"github.com/couchcryptid/vhi-dashboard/internal/dashboard"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/ingest"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	"github.com/couchcryptid/vhi-dashboard/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader, err := ingest.NewLoader(cfg.DataPattern, domain.Catalog, logger, metrics)
	if err != nil {
		logger.Error("failed to create loader", "error", err)
		os.Exit(1)
	}
	cached := cache.NewCachedLoader(loader, cfg.CacheSize, metrics)
	svc := dashboard.NewService(cached, cfg.DataDir, domain.Catalog, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the cache so readiness flips without waiting for the first request.
	var writer *kafkaadapter.Writer
	ds, err := svc.Dataset(ctx)
	switch {
	case err != nil:
		logger.Error("initial load failed", "data_dir", cfg.DataDir, "error", err)
	case cfg.KafkaEnabled:
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(writer, logger, metrics, cfg.BatchSize)
		go func() {
			if _, err := p.Publish(ctx, ds); err != nil {
				logger.Error("snapshot publish failed", "error", err)
			}
		}()
	default:
		logger.Info("kafka publishing disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
