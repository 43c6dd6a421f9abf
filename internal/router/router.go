package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-events-api/internal/config"
	"github.com/noah-isme/gema-events-api/internal/handler"
	"github.com/noah-isme/gema-events-api/internal/middleware"
	"github.com/noah-isme/gema-events-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EventHandler       *handler.EventHandler
	ParticipantHandler *handler.ParticipantHandler
	ActivityHandler    *handler.ActivityHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	}, jwtMiddleware, middleware.RequireActive())

	if deps.EventHandler != nil {
		writes := middleware.RateLimit("events", cfg.RateLimitMax, cfg.RateLimitWindow)
		deps.EventHandler.Register(api.Group("/events"), writes)
	}

	if deps.ParticipantHandler != nil {
		writes := middleware.RateLimit("participants", cfg.RateLimitMax, cfg.RateLimitWindow)
		deps.ParticipantHandler.Register(api.Group("/participants"), writes)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", middleware.RequireAdmin()))
	}
}
