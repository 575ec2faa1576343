package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/quotes3d-backend/api/routes"
	"github.com/angelmondragon/quotes3d-backend/internal/constraints"
	"github.com/angelmondragon/quotes3d-backend/internal/pricing"
	"github.com/angelmondragon/quotes3d-backend/internal/quotes"
	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/db"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
	"github.com/angelmondragon/quotes3d-backend/pkg/metrics"
	"github.com/angelmondragon/quotes3d-backend/pkg/migrate"
	"github.com/angelmondragon/quotes3d-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; without it quote POSTs are simply not deduplicated.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	table, err := pricing.TableFromConfig(cfg.Pricing, cfg.Shipping)
	if err != nil {
		logg.Error(context.Background(), "invalid rate card", err)
		os.Exit(1)
	}

	quotesService, err := quotes.NewService(
		quotes.NewRepository(dbClient.DB()),
		dbClient,
		table,
		quotes.Options{
			BuildVolume: constraints.BuildVolume{
				MaxX: cfg.Printer.MaxX,
				MaxY: cfg.Printer.MaxY,
				MaxZ: cfg.Printer.MaxZ,
			},
			MaxFiles:         cfg.Upload.MaxFilesPerQuote,
			MaxFileSizeBytes: cfg.Upload.MaxFileSizeBytes,
			MaxQuantity:      cfg.Pricing.MaxQuantity,
			QuoteTTL:         cfg.Quote.TTL,
			Logger:           logg,
			Metrics:          pipelineMetrics,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, quotesService, registry),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
