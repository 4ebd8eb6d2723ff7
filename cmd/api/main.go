package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/orbitcap/orbitcap/internal/adapters/http"
	natsadapter "github.com/orbitcap/orbitcap/internal/adapters/nats"
	"github.com/orbitcap/orbitcap/internal/adapters/postgres"
	"github.com/orbitcap/orbitcap/internal/adapters/valkey"
	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/core/ports"
	"github.com/orbitcap/orbitcap/internal/core/usecases"
	"github.com/orbitcap/orbitcap/internal/pkg/config"
	"github.com/orbitcap/orbitcap/internal/pkg/logging"
	"github.com/orbitcap/orbitcap/internal/pkg/metrics"
	"github.com/orbitcap/orbitcap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("orbitcap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("orbitcap-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	}

	// Repos
	missionRepo := postgres.NewMissionRepo(db)
	capacityRepo := postgres.NewCapacityRepo(db)

	// Use cases
	capacitySvc, err := usecases.NewCapacityService(ctx, capacityRepo)
	if err != nil {
		log.Fatalf("capacity table: %v", err)
	}
	missionSvc := usecases.NewMissionService(missionRepo, capacitySvc)
	analyticsSvc := usecases.NewAnalyticsService(missionRepo, capacitySvc, cacheSvc)

	// Drop cached analytics whenever the ingestor publishes a new batch
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeIngest(ctx, func(ctx context.Context, event *domain.IngestEvent) error {
			slog.Info("ingest event", "dataset", event.Dataset, "records", event.Records, "run_id", event.RunID)
			analyticsSvc.InvalidateReports(ctx)
			return nil
		})
		if err != nil {
			slog.Warn("subscribe ingest events", "error", err)
		}
	}

	// Database pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	deps := &http.Dependencies{
		Capacity:  capacitySvc,
		Missions:  missionSvc,
		Analytics: analyticsSvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "OrbitCap API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
