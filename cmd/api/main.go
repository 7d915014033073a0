package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/avelinelabs/orderfin-backend/api/routes"
	"github.com/avelinelabs/orderfin-backend/internal/financials"
	"github.com/avelinelabs/orderfin-backend/internal/pricing"
	"github.com/avelinelabs/orderfin-backend/pkg/config"
	"github.com/avelinelabs/orderfin-backend/pkg/db"
	"github.com/avelinelabs/orderfin-backend/pkg/logger"
	"github.com/avelinelabs/orderfin-backend/pkg/metrics"
	"github.com/avelinelabs/orderfin-backend/pkg/migrate"
	"github.com/avelinelabs/orderfin-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	finMetrics := metrics.NewFinancialsMetrics(registry)

	pricingService, err := pricing.NewService(pricing.ServiceParams{
		Repo:       pricing.NewRepository(dbClient.DB()),
		Calculator: pricing.NewLineSumCalculator(),
		TTL:        cfg.Pricing.SnapshotTTL,
		Logger:     logg,
		Metrics:    finMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	loader, err := financials.NewLoader(financials.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot loader", err)
		os.Exit(1)
	}

	financialsService, err := financials.NewService(
		financials.NewOrderReader(dbClient.DB()),
		loader,
		pricingService,
		finMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create financials service", err)
		os.Exit(1)
	}

	cachedFinancials, err := financials.NewCachedService(
		financialsService,
		redisClient,
		cfg.Financials.CacheTTL,
		logg,
		finMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create financials cache", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:     cfg,
			Logger:     logg,
			DBPinger:   dbClient,
			RedisP:     redisClient,
			Financials: cachedFinancials,
			Registry:   registry,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
