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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AdelSuarez/geo-api-v2/internal/adapters/http"
	"github.com/AdelSuarez/geo-api-v2/internal/adapters/mongodb"
	"github.com/AdelSuarez/geo-api-v2/internal/adapters/natsio"
	"github.com/AdelSuarez/geo-api-v2/internal/adapters/upstream"
	"github.com/AdelSuarez/geo-api-v2/internal/adapters/valkey"
	"github.com/AdelSuarez/geo-api-v2/internal/core/ports"
	"github.com/AdelSuarez/geo-api-v2/internal/core/usecases"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/config"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/logging"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geo-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

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

	// Document store
	db, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer db.Close()

	// Hot cache. Lookups survive without it.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Event broker. Publishing is best-effort.
	var events ports.EventPublisher
	nc, err := natsio.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		events = nc
	}

	// Repos
	cityRepo := mongodb.NewCityRepo(db)
	populationRepo := mongodb.NewPopulationRepo(db)
	reportRepo := mongodb.NewReportRepo(db)
	incidentRepo := mongodb.NewIncidentRepo(db)

	// Upstream clients
	geonames := upstream.NewGeoNames(cfg.GeoNames.BaseURL, cfg.GeoNames.Username)
	worldbank := upstream.NewWorldBank(cfg.WorldBank.BaseURL)
	tfl := upstream.NewTfL(cfg.Transit.BaseURL, cfg.Transit.AppKey)

	// Use cases
	citySvc := usecases.NewCityService(cityRepo, geonames, cacheSvc, logger)
	populationSvc := usecases.NewPopulationService(populationRepo, worldbank, cacheSvc, logger)
	transitSvc := usecases.NewTransitService(tfl)
	reportSvc := usecases.NewReportService(reportRepo, events, logger)
	incidentSvc := usecases.NewIncidentService(incidentRepo, events, logger)

	deps := &http.Dependencies{
		Cities:      citySvc,
		Populations: populationSvc,
		Transit:     transitSvc,
		Reports:     reportSvc,
		Incidents:   incidentSvc,
		DB:          db,
		Cache:       cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Geo API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
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
