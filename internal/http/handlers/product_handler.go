package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stocklock/internal/log"
	"stocklock/internal/services"
	"stocklock/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	TotalStock  int     `json:"total_stock"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "missing or oversized name")
	}
	if req.Price < 0 {
		return badRequest(c, "price must be >= 0")
	}
	if req.TotalStock < 0 {
		return badRequest(c, "total_stock must be >= 0")
	}

	p, err := h.Catalog.Create(name, req.Description, req.Price, req.TotalStock)
	if err != nil {
		return serviceError(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.List()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(p)
}

type adjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// AdjustStock applies a manual restock/shrinkage; this is the only stock
// path besides a committed sale that changes total_stock.
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if req.Delta == 0 {
		return badRequest(c, "delta must be non-zero")
	}
	reason, ok := validate.Reason(req.Reason)
	if !ok {
		return badRequest(c, "missing or oversized reason")
	}

	u := currentUser(c)
	p, err := h.Catalog.AdjustStock(id, req.Delta, reason, u.ID)
	if err != nil {
		return serviceError(c, err)
	}
	applog.Audit(c, "product.stock.adjust", map[string]any{"product_id": id, "delta": req.Delta})
	return c.JSON(p)
}

func (h *ProductHandler) History(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	changes, err := h.Catalog.History(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(changes)
}
