package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole rejects requests whose authenticated role is not in the
// allowed set. Must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current := GetCurrentRole(c)
		for _, role := range roles {
			if current == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}
