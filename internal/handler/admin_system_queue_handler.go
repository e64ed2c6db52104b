package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// AdminSystemQueueHandler exposes queue health for the admin dashboard.
type AdminSystemQueueHandler struct {
	service service.SystemQueueService
	logger  zerolog.Logger
}

// NewAdminSystemQueueHandler constructs the handler.
func NewAdminSystemQueueHandler(service service.SystemQueueService, logger zerolog.Logger) *AdminSystemQueueHandler {
	return &AdminSystemQueueHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_system_queue_handler").Logger(),
	}
}

// Register attaches queue routes to the router group.
func (h *AdminSystemQueueHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Put("/:name", h.report)
}

func (h *AdminSystemQueueHandler) list(c *fiber.Ctx) error {
	queues, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list system queues")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list system queues")
	}

	return utils.SendSuccess(c, "system queues retrieved", queues)
}

func (h *AdminSystemQueueHandler) report(c *fiber.Ctx) error {
	var payload dto.SystemQueueUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	queue, err := h.service.Report(c.UserContext(), c.Params("name"), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
		case errors.Is(err, service.ErrInvalidQueueName):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update system queue")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update system queue")
		}
	}

	return utils.SendSuccess(c, "system queue updated", queue)
}
