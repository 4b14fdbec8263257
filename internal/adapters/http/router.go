package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/middleground/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 60 requests per minute per IP. Searches fan out to paid
	// external APIs, so the budget is tighter than a read-only service.
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Legacy route aliases kept for existing clients
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{
			Path:        "/v1/meetings/midpoint",
			SunsetDate:  time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Alternative: "/v1/midpoint",
		},
	}))

	// REST API v1. Searches call geocoding, routing, and ranking services in
	// sequence, so they get a longer per-request timeout than lookups.
	v1 := app.Group("/v1")
	v1.Post("/meetings/search", timeout.NewWithContext(SearchMeetingHandler(deps), 60*time.Second))
	v1.Get("/midpoint", timeout.NewWithContext(MidpointHandler(deps), 30*time.Second))
	v1.Get("/meetings/midpoint", timeout.NewWithContext(MidpointHandler(deps), 30*time.Second))
	v1.Get("/venues/nearby", timeout.NewWithContext(NearbyVenuesHandler(deps), 15*time.Second))
	v1.Get("/travel/time", timeout.NewWithContext(TravelTimeHandler(deps), 15*time.Second))
	v1.Get("/travel/compare", timeout.NewWithContext(TravelCompareHandler(deps), 15*time.Second))
	v1.Get("/users/:id/history", timeout.NewWithContext(HistoryHandler(deps), 15*time.Second))
	v1.Get("/users/:id/preferences", timeout.NewWithContext(ListPreferencesHandler(deps), 15*time.Second))
	v1.Get("/users/:id/preferences/:key", timeout.NewWithContext(GetPreferenceHandler(deps), 15*time.Second))
	v1.Put("/users/:id/preferences/:key", timeout.NewWithContext(SetPreferenceHandler(deps), 15*time.Second))
	v1.Get("/users/:id/memory", timeout.NewWithContext(MemoryHandler(deps), 15*time.Second))
	v1.Get("/stats", timeout.NewWithContext(ServiceStatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
