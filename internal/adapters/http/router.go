package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/shipquote/internal/pkg/metrics"
)

// DefaultRateLimit is the per-IP request budget per minute.
const DefaultRateLimit = 100

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New())
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	rateLimit := deps.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	registerAPI(app.Group("/v1"), deps)
	registerAPI(app.Group(LegacyPrefix+"/v1", DeprecationMiddleware(LegacySunset)), deps)

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}

func registerAPI(r fiber.Router, deps *Dependencies) {
	r.Get("/logistics/distance", timeout.NewWithContext(DistanceHandler(deps), requestTimeout))
	r.Post("/logistics/recommendation", timeout.NewWithContext(RecommendationHandler(deps), requestTimeout))
	r.Delete("/logistics/recommendation/:orderId", timeout.NewWithContext(InvalidateRecommendationHandler(deps), requestTimeout))
	r.Post("/logistics/simulate", timeout.NewWithContext(SimulateHandler(deps), requestTimeout))

	r.Get("/warehouse/nearest", timeout.NewWithContext(NearestWarehouseHandler(deps), requestTimeout))

	r.Get("/shipping-charge", timeout.NewWithContext(ShippingChargeHandler(deps), requestTimeout))
	r.Post("/shipping-charge/calculate", timeout.NewWithContext(CalculateShippingChargeHandler(deps), requestTimeout))

	r.Get("/orders/:id/shipping", timeout.NewWithContext(OrderShippingHandler(deps), requestTimeout))

	r.Get("/metrics/shipping", ShippingMetricsHandler(deps))
	r.Get("/transport-modes", TransportModesHandler())
}
