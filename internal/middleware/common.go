package middleware

import (
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger          *zerolog.Logger
	AllowedOrigins  []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	// SlowRequest marks requests logged at warn level; zero disables the check.
	SlowRequest time.Duration
	// AccessLog enables the fiber access log on stdout.
	AccessLog bool
}

// Register attaches the middlewares shared by every route, outermost first.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	origins := "*"
	if len(cfg.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.AllowedOrigins, ",")
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(CorrelationID())
	app.Use(RequestMetrics(requestLogger, cfg.SlowRequest))
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:correlation_id} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  strings.Join([]string{"Origin", "Content-Type", "Accept", "Authorization", CorrelationHeader, "X-Seed-Token"}, ", "),
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: CorrelationHeader,
	}))
	if cfg.RateLimitMax > 0 {
		app.Use(RateLimit("api", cfg.RateLimitMax, cfg.RateLimitWindow))
	}
}
