package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// AdminFresherHandler wires admin fresher management endpoints.
type AdminFresherHandler struct {
	service service.AdminFresherService
	logger  zerolog.Logger
}

// NewAdminFresherHandler constructs the handler.
func NewAdminFresherHandler(service service.AdminFresherService, logger zerolog.Logger) *AdminFresherHandler {
	return &AdminFresherHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_fresher_handler").Logger(),
	}
}

// Register attaches fresher admin routes to the router group.
func (h *AdminFresherHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Put("/:id/avatar", h.avatar)
}

func (h *AdminFresherHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.FresherListRequest{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Batch:      c.Query("batch"),
		Status:     c.Query("status"),
		Sort:       c.Query("sort"),
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list freshers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list freshers")
	}

	return utils.OK(c, response.Items, "freshers retrieved", response.Pagination)
}

func (h *AdminFresherHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	fresher, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fresherError(c, err, "failed to fetch fresher")
	}

	return utils.SendSuccess(c, "fresher retrieved", fresher)
}

func (h *AdminFresherHandler) create(c *fiber.Ctx) error {
	var payload dto.FresherCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	fresher, err := h.service.Create(c.UserContext(), activityActorFromContext(c), payload)
	if err != nil {
		return h.fresherError(c, err, "failed to create fresher")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "fresher created", fresher)
}

func (h *AdminFresherHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.FresherUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	fresher, err := h.service.Update(c.UserContext(), activityActorFromContext(c), id, payload)
	if err != nil {
		return h.fresherError(c, err, "failed to update fresher")
	}

	return utils.SendSuccess(c, "fresher updated", fresher)
}

func (h *AdminFresherHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.UserContext(), activityActorFromContext(c), id); err != nil {
		return h.fresherError(c, err, "failed to delete fresher")
	}

	return utils.SendSuccess(c, "fresher deleted", fiber.Map{"id": id})
}

func (h *AdminFresherHandler) avatar(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrAvatarRequired.Error())
	}

	fresher, err := h.service.UploadAvatar(c.UserContext(), activityActorFromContext(c), id, file)
	if err != nil {
		return h.fresherError(c, err, "failed to upload avatar")
	}

	return utils.SendSuccess(c, "avatar updated", fresher)
}

func (h *AdminFresherHandler) fresherError(c *fiber.Ctx, err error, message string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrFresherNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "fresher not found")
	case errors.Is(err, service.ErrFresherEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAvatarTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrAvatarStorageUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrInvalidFresherName),
		errors.Is(err, service.ErrAvatarRequired),
		errors.Is(err, service.ErrAvatarTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
