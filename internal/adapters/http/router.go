package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/AdelSuarez/geo-api-v2/internal/pkg/metrics"
)

const handlerTimeout = 15 * time.Second

// SetupRoutes registers all routes. The /geo and /transit paths are the
// public contract and must not change shape.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
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
		c.Set("X-API-Version", "2.0.0")
		return c.Next()
	})

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/healthz", HealthHandler(deps))
	app.Get("/readyz", ReadyHandler(deps))

	geo := app.Group("/geo")
	geo.Get("/city/:city", timeout.NewWithContext(GetCityHandler(deps), handlerTimeout))
	geo.Get("/history_cities", timeout.NewWithContext(CityHistoryHandler(deps), handlerTimeout))
	geo.Put("/city_update/:id", timeout.NewWithContext(UpdateCityHandler(deps), handlerTimeout))
	geo.Delete("/city_delete/:id", timeout.NewWithContext(DeleteCityHandler(deps), handlerTimeout))

	geo.Get("/population/:countryCode", timeout.NewWithContext(GetPopulationHandler(deps), handlerTimeout))
	geo.Get("/history_populations", timeout.NewWithContext(PopulationHistoryHandler(deps), handlerTimeout))
	geo.Delete("/population_delete/:id", timeout.NewWithContext(DeletePopulationHandler(deps), handlerTimeout))

	geo.Post("/report", timeout.NewWithContext(CreateReportHandler(deps), handlerTimeout))
	geo.Get("/history_reports", timeout.NewWithContext(ReportHistoryHandler(deps), handlerTimeout))
	geo.Get("/reports/nearby", timeout.NewWithContext(NearbyReportsHandler(deps), handlerTimeout))
	geo.Get("/report/:id", timeout.NewWithContext(GetReportHandler(deps), handlerTimeout))
	geo.Put("/report_update/:id", timeout.NewWithContext(UpdateReportHandler(deps), handlerTimeout))
	geo.Delete("/report_delete/:id", timeout.NewWithContext(DeleteReportHandler(deps), handlerTimeout))

	transit := app.Group("/transit")
	transit.Get("/routes/:city", timeout.NewWithContext(TransitRoutesHandler(deps), handlerTimeout))
	transit.Get("/eta", timeout.NewWithContext(TransitETAHandler(deps), handlerTimeout))
	transit.Get("/incident", timeout.NewWithContext(ListIncidentsHandler(deps), handlerTimeout))
	transit.Post("/incident", timeout.NewWithContext(CreateIncidentHandler(deps), handlerTimeout))
	transit.Put("/incident/:id", timeout.NewWithContext(UpdateIncidentHandler(deps), handlerTimeout))
	transit.Delete("/incident/:id", timeout.NewWithContext(DeleteIncidentHandler(deps), handlerTimeout))
}
