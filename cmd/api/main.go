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

	"github.com/samirrijal/middleground/internal/adapters/gemini"
	"github.com/samirrijal/middleground/internal/adapters/googlemaps"
	"github.com/samirrijal/middleground/internal/adapters/http"
	natsadapter "github.com/samirrijal/middleground/internal/adapters/nats"
	"github.com/samirrijal/middleground/internal/adapters/postgres"
	"github.com/samirrijal/middleground/internal/adapters/valkey"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/core/usecases"
	"github.com/samirrijal/middleground/internal/pkg/config"
	"github.com/samirrijal/middleground/internal/pkg/logging"
	"github.com/samirrijal/middleground/internal/pkg/metrics"
	"github.com/samirrijal/middleground/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("middleground-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("middleground-api", logLevel, "json")

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
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// External services
	maps := googlemaps.NewClient(cfg.Maps.APIKey, cfg.Maps.BaseURL)
	geocoder := googlemaps.NewGeocoder(maps)
	oracle := googlemaps.NewDistanceMatrix(maps)
	places := googlemaps.NewPlaces(maps)

	ai := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	ranker := gemini.NewRanker(ai)
	interpreter := gemini.NewInterpreter(ai)

	// Repos
	prefRepo := postgres.NewPreferenceRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)

	// Optional collaborators stay nil interfaces when unavailable
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var eventPub ports.EventPublisher
	if publisher != nil {
		eventPub = publisher
	}

	// Use cases
	midpointSvc := usecases.NewMidpointService(oracle)
	rankingSvc := usecases.NewRankingService(oracle, ranker, eventPub, cfg.Search.EnrichWorkers)
	travelSvc := usecases.NewTravelService(oracle, cacheSvc)
	prefSvc := usecases.NewPreferenceService(prefRepo, historyRepo)
	meetingSvc := usecases.NewMeetingService(
		geocoder, midpointSvc, places, rankingSvc, interpreter, historyRepo, eventPub, cacheSvc)

	deps := &http.Dependencies{
		Meetings:    meetingSvc,
		Midpoints:   midpointSvc,
		Travel:      travelSvc,
		Preferences: prefSvc,
		Venues:      places,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
	}

	// Pool gauge refresh
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Middleground API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.middleground.app",
		AllowMethods:     "GET,POST,PUT,OPTIONS",
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
