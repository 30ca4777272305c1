package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stocklock/internal/domain"
	applog "stocklock/internal/log"
)

// serviceError maps the engine's expected outcomes to HTTP statuses.
// Anything outside the taxonomy is an internal fault: logged, surfaced as 503.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNotActive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrReservationExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	default:
		applog.Error(c, "service.error", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable, retry shortly"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
