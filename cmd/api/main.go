package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kitroom/kitroom-backend/api/routes"
	"github.com/kitroom/kitroom-backend/internal/holdings"
	"github.com/kitroom/kitroom-backend/internal/inventory"
	"github.com/kitroom/kitroom-backend/pkg/config"
	"github.com/kitroom/kitroom-backend/pkg/db"
	"github.com/kitroom/kitroom-backend/pkg/logger"
	"github.com/kitroom/kitroom-backend/pkg/metrics"
	"github.com/kitroom/kitroom-backend/pkg/migrate"
	"github.com/kitroom/kitroom-backend/pkg/redis"
)

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	invRepo := inventory.NewRepository(dbClient.DB())
	inventoryService := inventory.NewService(invRepo, dbClient, logg)

	holdingsService := holdings.NewService(
		holdings.NewRepository(dbClient.DB()),
		invRepo,
		inventory.NewLocator(cfg.Inventory.LocateBatchLimit, cfg.Inventory.LocateTimeout, logg),
		dbClient,
		holdings.NewGuard(cfg.Holdings.GuardTTL),
		metrics.NewEngineMetrics(prometheus.DefaultRegisterer),
		logg,
		cfg.Holdings.TxMaxRetries,
	)

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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, holdingsService, inventoryService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
