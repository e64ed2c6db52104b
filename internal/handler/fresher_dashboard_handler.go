package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// FresherDashboardHandler exposes the fresher dashboard endpoint.
type FresherDashboardHandler struct {
	service service.FresherDashboardService
	logger  zerolog.Logger
}

// NewFresherDashboardHandler creates a new handler instance.
func NewFresherDashboardHandler(service service.FresherDashboardService, logger zerolog.Logger) *FresherDashboardHandler {
	return &FresherDashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "fresher_dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint.
func (h *FresherDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
}

func (h *FresherDashboardHandler) getDashboard(c *fiber.Ctx) error {
	fresherID, err := currentFresherID(c, h.service)
	if err != nil {
		return sendIdentityError(c, h.logger, err)
	}

	dashboard, err := h.service.GetDashboard(c.UserContext(), fresherID)
	if err != nil {
		if errors.Is(err, service.ErrFresherNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "fresher profile not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("fresher_id", fresherID).Msg("failed to load dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return utils.OK(c, dashboard, "dashboard retrieved", fiber.Map{"cache_hit": dashboard.CacheHit})
}
