package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"recruitforge/hiring-engine/internal/models"
)

// errorResponse translates the core error taxonomy into HTTP status codes.
func errorResponse(c *fiber.Ctx, err error) error {
	var validationErr *models.ValidationError
	var exhaustedErr *models.AllProvidersExhaustedError

	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &exhaustedErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
