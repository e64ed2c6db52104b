package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/middleware"
	"github.com/noah-isme/fresher-training-api/internal/service"
	"github.com/noah-isme/fresher-training-api/internal/utils"
)

const fresherIDLocal = "fresher_id"

var errMissingUser = errors.New("missing user context")

// FresherResolver maps an authenticated account to its fresher record.
type FresherResolver interface {
	ResolveFresherID(ctx context.Context, userID uint) (uint, error)
}

// currentFresherID resolves the caller's fresher id once per request.
func currentFresherID(c *fiber.Ctx, resolver FresherResolver) (uint, error) {
	if id, ok := c.Locals(fresherIDLocal).(uint); ok && id > 0 {
		return id, nil
	}

	access := middleware.AccessFromContext(c)
	if !access.Authenticated {
		return 0, errMissingUser
	}

	id, err := resolver.ResolveFresherID(c.Context(), access.UserID)
	if err != nil {
		return 0, err
	}
	c.Locals(fresherIDLocal, id)
	return id, nil
}

func sendIdentityError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, errMissingUser):
		return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", fiber.Map{"redirect": middleware.LoginRoute})
	case errors.Is(err, service.ErrFresherNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "fresher profile not found")
	default:
		requestLogger(logger, c).Error().Err(err).Msg("failed to resolve fresher")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve fresher")
	}
}
