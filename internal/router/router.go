package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/fresher-training-api/internal/config"
	"github.com/noah-isme/fresher-training-api/internal/handler"
	"github.com/noah-isme/fresher-training-api/internal/middleware"
	"github.com/noah-isme/fresher-training-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuizHandler             *handler.QuizHandler
	FresherDashboardHandler *handler.FresherDashboardHandler
	AdminFresherHandler     *handler.AdminFresherHandler
	AdminAnalyticsHandler   *handler.AdminAnalyticsHandler
	AdminActivityHandler    *handler.AdminActivityHandler
	AdminQueueHandler       *handler.AdminSystemQueueHandler
	SeedHandler             *handler.SeedHandler
	HealthProbes            []handler.HealthProbe
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	fresher := app.Group("/api/v2/fresher", jwtMiddleware, middleware.RequireRole(middleware.RoleFresher))
	if deps.FresherDashboardHandler != nil {
		deps.FresherDashboardHandler.Register(fresher)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(fresher)
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin))
	if deps.AdminFresherHandler != nil {
		deps.AdminFresherHandler.Register(admin.Group("/freshers"))
	}
	if deps.AdminAnalyticsHandler != nil {
		deps.AdminAnalyticsHandler.Register(admin.Group("/analytics"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activities"))
	}
	if deps.AdminQueueHandler != nil {
		deps.AdminQueueHandler.Register(admin.Group("/system-queues"))
	}
}
