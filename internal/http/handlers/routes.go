package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "stocklock/internal/log"
)

// Mount registers every API route. Kept out of main so tests can stand up
// the same surface on an in-memory database.
func Mount(app *fiber.App, d *Deps) {
	// Auth (login throttled)
	auth := app.Group("/auth")
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), d.AuthHandler.Login)
	auth.Post("/logout", d.AuthHandler.Logout)

	// Products: reads are public, mutation is admin-only
	app.Get("/products", d.ProductHandler.List)
	app.Get("/products/:id", d.ProductHandler.Get)
	app.Post("/products", RequireAdmin(d.Auth), d.ProductHandler.Create)
	app.Put("/products/:id/stock", RequireAdmin(d.Auth), d.ProductHandler.AdjustStock)
	app.Get("/products/:id/history", RequireAdmin(d.Auth), d.ProductHandler.History)

	// Reservations: authenticated, creation throttled per IP
	res := app.Group("/reservations", RequireUser(d.Auth))
	res.Post("/", limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.reservation.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.ReservationHandler.Create)
	res.Get("/user", d.ReservationHandler.ListMine)
	res.Get("/:id", d.ReservationHandler.Get)
	res.Post("/:id/commit", d.ReservationHandler.Commit)
	res.Post("/:id/cancel", d.ReservationHandler.Cancel)

	// Orders
	orders := app.Group("/orders", RequireUser(d.Auth))
	orders.Get("/", d.OrderHandler.List)
	orders.Get("/:id", d.OrderHandler.Get)
	app.Put("/orders/:id/status", RequireAdmin(d.Auth), d.OrderHandler.UpdateStatus)

	// System
	app.Get("/health", d.SystemHandler.Health)
	app.Get("/audit", RequireAdmin(d.Auth), d.SystemHandler.AuditLog)
}
