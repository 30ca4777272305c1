package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stocklock/internal/repos"
	"stocklock/internal/services"
)

type SystemHandler struct {
	Audit *repos.AuditRepo
	Res   *services.ReservationService
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":              "ok",
		"active_reservations": h.Res.ActiveCount(),
	})
}

// AuditLog returns the newest audit events (admin only).
func (h *SystemHandler) AuditLog(c *fiber.Ctx) error {
	events, err := h.Audit.Latest(c.QueryInt("limit", 50))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(events)
}
