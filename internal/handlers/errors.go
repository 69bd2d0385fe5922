package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/shopcore/internal/services"
)

// ErrorHandler maps typed service errors onto HTTP responses. Installed as
// the Fiber error handler so handlers can surface service errors unmodified.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return c.Status(svcErr.Status).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    svcErr.Code,
				"message": svcErr.Message,
			},
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"message": fiberErr.Message},
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"message": "internal server error"},
	})
}
