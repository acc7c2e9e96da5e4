package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		local  interface{}
		roles  []models.Role
		status int
	}{
		{name: "admin token on admin route", local: "admin", roles: []models.Role{models.RoleAdmin}, status: fiber.StatusOK},
		{name: "role claim is case insensitive", local: " Tutor ", roles: []models.Role{models.RoleTutor, models.RoleAdmin}, status: fiber.StatusOK},
		{name: "typed role local", local: models.RoleStudent, roles: []models.Role{models.RoleStudent}, status: fiber.StatusOK},
		{name: "student on admin route", local: "student", roles: []models.Role{models.RoleAdmin}, status: fiber.StatusForbidden},
		{name: "unknown role", local: "guest", roles: []models.Role{models.RoleAdmin}, status: fiber.StatusForbidden},
		{name: "no role", local: nil, roles: []models.Role{models.RoleAdmin}, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.local != nil {
					c.Locals("user_role", tc.local)
				}
				return c.Next()
			})
			app.Use(RequireRole(tc.roles...))
			app.Get("/admin", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireRolePanicsWithoutKnownRoles(t *testing.T) {
	require.Panics(t, func() { RequireRole() })
	require.Panics(t, func() { RequireRole(models.Role("superuser")) })
}
