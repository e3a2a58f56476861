package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
)

func TestIdentityBindsNormalizedHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(Identity())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		identity := IdentityFromCtx(c)
		return c.JSON(identity)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "  stud-1 ")
	req.Header.Set("X-User-Role", "Student")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var identity auth.Identity
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&identity))
	require.Equal(t, "stud-1", identity.UserID)
	require.Equal(t, auth.RoleStudent, identity.Role)
}

func TestRequireIdentityRejectsMissingHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(Identity())
	app.Use(RequireIdentity())
	app.Get("/secure", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleEnforcement(t *testing.T) {
	app := fiber.New()
	app.Use(Identity())
	app.Use(RequireRole(auth.RoleProfessor))
	app.Get("/review", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/review", nil)
	req.Header.Set("X-User-Id", "stud-1")
	req.Header.Set("X-User-Role", "student")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/review", nil)
	req.Header.Set("X-User-Id", "prof-ada")
	req.Header.Set("X-User-Role", "professor")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
