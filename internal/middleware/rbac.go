package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// RequireRole ensures the authenticated caller holds the required role. Denials carry
// the caller's home route so the dashboard can redirect.
func RequireRole(required Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		access := AccessFromContext(c)
		if CanAccess(access, required) {
			return c.Next()
		}

		details := fiber.Map{"redirect": HomeRoute(access)}
		if !access.Authenticated {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", details)
		}
		return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", details)
	}
}
