package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// AdminAnalyticsHandler serves the programme summary shown on the admin dashboard.
type AdminAnalyticsHandler struct {
	service service.AdminAnalyticsService
	logger  zerolog.Logger
}

// NewAdminAnalyticsHandler constructs the handler.
func NewAdminAnalyticsHandler(service service.AdminAnalyticsService, logger zerolog.Logger) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to the router group.
func (h *AdminAnalyticsHandler) Register(router fiber.Router) {
	router.Get("", h.summary)
}

// summary reports cache state in X-Cache and the aggregation time in Last-Modified.
func (h *AdminAnalyticsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to aggregate analytics summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load analytics")
	}

	cacheState := "MISS"
	if summary.CacheHit {
		cacheState = "HIT"
	}
	c.Set("X-Cache", cacheState)
	c.Set(fiber.HeaderCacheControl, "private, no-cache")
	if !summary.GeneratedAt.IsZero() {
		c.Set(fiber.HeaderLastModified, summary.GeneratedAt.UTC().Format(http.TimeFormat))
	}

	return utils.OK(c, summary, "analytics summary", fiber.Map{
		"cache_hit":    summary.CacheHit,
		"generated_at": summary.GeneratedAt,
	})
}
