package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "stocklock/internal/log"
	"stocklock/internal/services"
	"stocklock/internal/validate"
)

type ReservationHandler struct {
	Res        *services.ReservationService
	DefaultTTL time.Duration
	MaxTTLMin  int
}

type createReservationRequest struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	TTLMinutes int    `json:"ttl_minutes"`
}

func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var req createReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "invalid product_id")
	}
	qty, ok := validate.Qty(req.Quantity)
	if !ok {
		return badRequest(c, "quantity must be positive")
	}
	if !validate.TTLMinutes(req.TTLMinutes, h.MaxTTLMin) {
		return badRequest(c, "ttl_minutes out of range")
	}
	ttl := h.DefaultTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}

	u := currentUser(c)
	res, product, err := h.Res.Create(u.ID, productID, qty, ttl)
	if err != nil {
		return serviceError(c, err)
	}

	applog.Audit(c, "reservation.create", map[string]any{
		"reservation_id": res.ID, "product_id": productID, "quantity": qty,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reservation_id":  res.ID,
		"user_id":         res.UserID,
		"product_id":      res.ProductID,
		"quantity":        res.Quantity,
		"status":          res.Status,
		"created_at":      res.CreatedAt,
		"expires_at":      res.ExpiresAt,
		"unit_price":      res.UnitPrice,
		"available_stock": product.AvailableStock,
	})
}

func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	res, err := h.Res.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	u := currentUser(c)
	if res.UserID != u.ID && !isAdmin(u) {
		applog.Security(c, "reservation.get.denied", map[string]any{"reservation_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not allowed to view this reservation"})
	}
	return c.JSON(res)
}

// ListMine returns the caller's active holds.
func (h *ReservationHandler) ListMine(c *fiber.Ctx) error {
	u := currentUser(c)
	return c.JSON(h.Res.ListActiveForUser(u.ID))
}

type commitRequest struct {
	PaymentID       string `json:"payment_id"`
	ShippingAddress string `json:"shipping_address"`
}

func (h *ReservationHandler) Commit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var req commitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		return badRequest(c, "missing payment_id")
	}

	u := currentUser(c)
	res, err := h.Res.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	if res.UserID != u.ID && !isAdmin(u) {
		applog.Security(c, "reservation.commit.denied", map[string]any{"reservation_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not allowed to commit this reservation"})
	}

	order, err := h.Res.Commit(id, req.PaymentID, req.ShippingAddress)
	if err != nil {
		return serviceError(c, err)
	}
	applog.Audit(c, "reservation.commit", map[string]any{
		"reservation_id": id, "order_id": order.ID,
	})
	return c.JSON(order)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	reason, ok := validate.Reason(req.Reason)
	if !ok {
		return badRequest(c, "missing or oversized reason")
	}

	u := currentUser(c)
	res, err := h.Res.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	if res.UserID != u.ID && !isAdmin(u) {
		applog.Security(c, "reservation.cancel.denied", map[string]any{"reservation_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not allowed to cancel this reservation"})
	}

	if err := h.Res.Cancel(id, reason); err != nil {
		return serviceError(c, err)
	}
	applog.Audit(c, "reservation.cancel", map[string]any{"reservation_id": id, "reason": reason})
	return c.JSON(fiber.Map{"status": "cancelled", "reservation_id": id})
}
