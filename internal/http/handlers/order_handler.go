package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stocklock/internal/log"
	"stocklock/internal/services"
	"stocklock/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// List shows the caller's own orders; admins see everything and may filter
// with ?user_id=.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)
	filter := u.ID
	if isAdmin(u) {
		filter = c.Query("user_id")
	}
	orders, err := h.Orders.List(filter, c.QueryInt("limit"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	o, err := h.Orders.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	u := currentUser(c)
	if o.UserID != u.ID && !isAdmin(u) {
		applog.Security(c, "order.get.denied", map[string]any{"order_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not allowed to view this order"})
	}
	return c.JSON(o)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	status, ok := validate.OrderStatus(req.Status)
	if !ok {
		return badRequest(c, "invalid status")
	}

	u := currentUser(c)
	o, err := h.Orders.UpdateStatus(id, status, u.ID)
	if err != nil {
		return serviceError(c, err)
	}
	applog.Audit(c, "order.status.update", map[string]any{"order_id": id, "status": status})
	return c.JSON(o)
}
