package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// SeedTokenHeader carries the shared secret that unlocks seeding.
const SeedTokenHeader = "X-Seed-Token"

const maxSeedBatch = 500

// SeedHandler loads fresher rosters for demos and local environments.
type SeedHandler struct {
	service   service.SeedService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, validate *validator.Validate, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/freshers", h.freshers)
}

type seedFreshersRequest struct {
	Items []dto.SeedFresher `json:"items" validate:"required,min=1,dive"`
}

func (h *SeedHandler) freshers(c *fiber.Ctx) error {
	var payload seedFreshersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if len(payload.Items) > maxSeedBatch {
		return utils.Fail(c, fiber.StatusRequestEntityTooLarge, "too many items", fiber.Map{"max_items": maxSeedBatch})
	}
	if err := h.validator.Struct(payload); err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", seedValidationDetails(err))
		}
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	affected, err := h.service.SeedFreshers(c.UserContext(), c.Get(SeedTokenHeader), payload.Items)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "freshers seeded", fiber.Map{
		"received": len(payload.Items),
		"affected": affected,
	})
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}
}

// seedValidationDetails keys each failure by its position in the batch, e.g. items[2].email.
func seedValidationDetails(err error) fiber.Map {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := fiber.Map{}
	for _, fieldErr := range validationErrors {
		path := fieldErr.StructNamespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		fields[strings.ToLower(path)] = fieldErr.Tag()
	}
	return fiber.Map{"fields": fields}
}
