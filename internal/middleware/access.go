package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Role identifies the kind of dashboard user.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleFresher Role = "fresher"
)

// Home routes the dashboard sends users to after a denied navigation.
const (
	AdminHomeRoute   = "/admin-dashboard"
	FresherHomeRoute = "/fresher-dashboard"
	LoginRoute       = "/login"
)

// AccessContext is the authentication state of the caller.
type AccessContext struct {
	Authenticated bool
	Role          Role
	UserID        uint
}

// ParseRole maps a raw claim value onto a known role. Trainer accounts act as administrators.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "trainer", "teacher":
		return RoleAdmin
	case "fresher", "student", "trainee":
		return RoleFresher
	default:
		return RoleNone
	}
}

// CanAccess reports whether the caller may reach a surface restricted to required.
// RoleNone as required means any authenticated user.
func CanAccess(ctx AccessContext, required Role) bool {
	if !ctx.Authenticated {
		return false
	}
	if required == RoleNone {
		return true
	}
	return ctx.Role == required
}

// HomeRoute returns where the caller belongs when access is denied.
func HomeRoute(ctx AccessContext) string {
	if !ctx.Authenticated {
		return LoginRoute
	}
	switch ctx.Role {
	case RoleAdmin:
		return AdminHomeRoute
	case RoleFresher:
		return FresherHomeRoute
	default:
		return LoginRoute
	}
}

// AccessFromContext builds the access context from request locals set by JWTProtected.
func AccessFromContext(c *fiber.Ctx) AccessContext {
	ctx := AccessContext{Role: ParseRole(normalizeRoleValue(c.Locals("user_role")))}

	switch v := c.Locals("user_id").(type) {
	case uint:
		ctx.UserID = v
		ctx.Authenticated = true
	case int:
		if v > 0 {
			ctx.UserID = uint(v)
			ctx.Authenticated = true
		}
	}

	return ctx
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case Role:
		return string(v)
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
