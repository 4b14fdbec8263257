package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/middleground/internal/adapters/gemini"
	"github.com/samirrijal/middleground/internal/adapters/googlemaps"
	natsadapter "github.com/samirrijal/middleground/internal/adapters/nats"
	"github.com/samirrijal/middleground/internal/adapters/postgres"
	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/usecases"
	"github.com/samirrijal/middleground/internal/pkg/config"
	"github.com/samirrijal/middleground/internal/pkg/logging"
	"github.com/samirrijal/middleground/internal/workflows"
)

// The worker hosts two consumers: the Temporal queue for durable searches
// and the JetStream memory-learner that folds completed searches back into
// user preferences.
func main() {
	cfg, err := config.Load("middleground-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("middleground-worker", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	prefRepo := postgres.NewPreferenceRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)

	maps := googlemaps.NewClient(cfg.Maps.APIKey, cfg.Maps.BaseURL)
	ai := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)

	oracle := googlemaps.NewDistanceMatrix(maps)

	// Memory learner: every completed search updates the user's last-used
	// place type, keeping the memory bank fresh without blocking searches.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, memory learner disabled", "error", err)
	} else {
		defer sub.Close()
		err = sub.SubscribeSearchCompleted(ctx, func(ctx context.Context, rec *domain.SearchRecord) error {
			if rec.UserID == "" || rec.PlaceType == "" {
				return nil
			}
			return prefRepo.Upsert(ctx, &domain.Preference{
				UserID:    rec.UserID,
				Key:       "last_place_type",
				Value:     rec.PlaceType,
				UpdatedAt: time.Now(),
			})
		})
		if err != nil {
			slog.Warn("subscribe search completed", "error", err)
		}

		// Fallback monitor: surface degraded ranking so an operator notices
		// before users do.
		err = sub.SubscribeRankFallbacks(ctx, func(ctx context.Context, reason string) error {
			slog.Warn("venue ranking degraded to fallback scoring", "reason", reason)
			return nil
		})
		if err != nil {
			slog.Warn("subscribe rank fallbacks", "error", err)
		}
	}

	// Temporal worker for durable searches
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.MeetingSearchWorkflow)
	w.RegisterActivity(&workflows.SearchActivities{
		Geocoder:  googlemaps.NewGeocoder(maps),
		Midpoints: usecases.NewMidpointService(oracle),
		Venues:    googlemaps.NewPlaces(maps),
		Ranking:   usecases.NewRankingService(oracle, gemini.NewRanker(ai), nil, cfg.Search.EnrichWorkers),
		History:   historyRepo,
	})

	slog.Info("search worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
