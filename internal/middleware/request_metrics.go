package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/observability"
)

// surfacePrefixes maps route prefixes onto the metric surface label. Unlisted paths are not measured.
var surfacePrefixes = []struct {
	prefix  string
	surface string
}{
	{prefix: "/api/admin", surface: observability.SurfaceAdmin},
	{prefix: "/api/v2/fresher", surface: observability.SurfaceFresher},
	{prefix: "/api/v1", surface: observability.SurfacePublic},
}

// RequestMetrics records Prometheus request metrics and writes one structured log line per API request.
// Requests slower than slowThreshold are logged at warn level.
func RequestMetrics(logger zerolog.Logger, slowThreshold time.Duration) fiber.Handler {
	observability.RegisterMetrics()
	logger = logger.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		surface := surfaceFor(c.Path())
		if surface == "" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app error handler write the status before it is recorded.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}
		elapsed := time.Since(start)

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()
		status := c.Response().StatusCode()
		statusLabel := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(surface, method, route, statusLabel).Inc()
		observability.HTTPLatency().WithLabelValues(surface, method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(surface, method, route, statusLabel).Inc()
		}

		event := logger.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logger.Error()
		case status >= fiber.StatusBadRequest || (slowThreshold > 0 && elapsed > slowThreshold):
			event = logger.Warn()
		}
		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("surface", surface).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("request completed")

		return err
	}
}

func surfaceFor(path string) string {
	for _, candidate := range surfacePrefixes {
		if strings.HasPrefix(path, candidate.prefix) {
			return candidate.surface
		}
	}
	return ""
}
