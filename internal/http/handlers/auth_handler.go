package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stocklock/internal/log"
	"stocklock/internal/services"
	"stocklock/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return badRequest(c, "invalid email")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "missing or oversized name")
	}
	if !validate.Password(req.Password) {
		return badRequest(c, "password must be 8+ chars with upper, lower and digit")
	}

	u, err := h.Auth.Register(email, name, req.Password)
	if err != nil {
		// Most likely a duplicate email; don't leak which.
		applog.Security(c, "auth.register.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "could not register with these details"})
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user_id": u.ID, "email": u.Email})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	u, token, err := h.Auth.Login(email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"access_token": token, "user_id": u.ID, "role": u.Role})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token != "" {
		_ = h.Auth.Logout(token)
	}
	return c.JSON(fiber.Map{"status": "logged_out"})
}
