package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

var activityTypes = map[string]struct{}{
	models.ActivityFresherAdded:   {},
	models.ActivityFresherUpdated: {},
	models.ActivityFresherRemoved: {},
	models.ActivityQuizCompleted:  {},
}

// AdminActivityHandler serves the recent-activity feed of the admin dashboard.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity feed routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

// list accepts page, page_size, type, fresher_id and since (RFC 3339 or YYYY-MM-DD).
func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	req, err := activityListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feed, err := h.service.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.OK(c, feed.Items, "activities retrieved", feed.Pagination)
}

func activityListRequest(c *fiber.Ctx) (dto.ActivityListRequest, error) {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return dto.ActivityListRequest{}, err
	}
	req := dto.ActivityListRequest{Page: page, PageSize: pageSize}

	if kind := strings.ToLower(strings.TrimSpace(c.Query("type"))); kind != "" {
		if _, ok := activityTypes[kind]; !ok {
			return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid activity type")
		}
		req.Type = kind
	}

	fresherID, err := parseQueryInt(c, "fresher_id")
	if err != nil || fresherID < 0 {
		return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid fresher id")
	}
	if fresherID > 0 {
		id := uint(fresherID)
		req.FresherID = &id
	}

	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := parseSince(raw)
		if err != nil {
			return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid since")
		}
		req.Since = &since
	}

	return req, nil
}

func parseSince(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return day.UTC(), nil
}
