package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newRoleApp(userID interface{}, role string, required Role) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != nil {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(RequireRole(required))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func redirectOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var payload struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.Details["redirect"]
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := newRoleApp(uint(1), "Trainer", RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRedirectsFresherAwayFromAdmin(t *testing.T) {
	app := newRoleApp(uint(10), "fresher", RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, FresherHomeRoute, redirectOf(t, resp))
}

func TestRequireRoleRedirectsAdminAwayFromFresher(t *testing.T) {
	app := newRoleApp(uint(1), "admin", RoleFresher)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, AdminHomeRoute, redirectOf(t, resp))
}

func TestRequireRoleSendsAnonymousToLogin(t *testing.T) {
	app := newRoleApp(nil, "", RoleNone)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, LoginRoute, redirectOf(t, resp))
}
