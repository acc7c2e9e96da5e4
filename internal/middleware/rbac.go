package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// RequireRole admits accounts whose token role is one of roles. It must run
// after JWTProtected; unknown or missing roles are treated as forbidden.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if parsed, ok := models.ParseRole(string(role)); ok {
			allowed[parsed] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		panic("middleware: RequireRole needs at least one known role")
	}

	return func(c *fiber.Ctx) error {
		role, ok := roleFromLocals(c)
		if !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, fmt.Sprintf("%s accounts cannot access this resource", role))
		}
		return c.Next()
	}
}

// roleFromLocals reads the role JWTProtected stored for the request.
func roleFromLocals(c *fiber.Ctx) (models.Role, bool) {
	switch v := c.Locals("user_role").(type) {
	case models.Role:
		return models.ParseRole(string(v))
	case string:
		return models.ParseRole(v)
	default:
		return "", false
	}
}
