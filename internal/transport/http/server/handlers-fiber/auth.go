package handlers_fiber

import (
	"net/http"

	"task-manager/internal/entities"
	"task-manager/internal/mapper"
	api "task-manager/internal/transport/http/api"
	"task-manager/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// Register creates an account. An admin token allows registering admins.
func (h *Handler) Register(c *fiber.Ctx) error {
	var body api.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	var caller *entities.Actor
	if a, ok := middleware.Actor(c); ok {
		caller = &a
	}

	session, err := h.uc.Register(c.UserContext(), caller, mapper.FromRegister(body))
	if err != nil {
		return h.fail(c, "failed to register user", err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToAPISession(*session))
}

// Login exchanges credentials for a token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body api.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	session, err := h.uc.Login(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return h.fail(c, "failed to log in", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPISession(*session))
}

// Profile returns the caller with teams and assigned tasks.
func (h *Handler) Profile(c *fiber.Ctx) error {
	details, err := h.uc.Profile(c.UserContext(), actor(c))
	if err != nil {
		return h.fail(c, "failed to load profile", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIUserDetails(*details))
}

// UpdateProfile edits the caller's name, email or password.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var body api.UpdateUserRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	user, err := h.uc.UpdateProfile(c.UserContext(), actor(c), mapper.FromUserUpdate(body))
	if err != nil {
		return h.fail(c, "failed to update profile", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIUser(*user))
}

// Verify echoes the verified token claims.
func (h *Handler) Verify(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)
	return c.Status(http.StatusOK).JSON(api.VerifyResponse{
		Valid:     true,
		UserID:    claims.Actor.ID,
		Role:      string(claims.Actor.Role),
		ExpiresAt: claims.ExpiresAt,
	})
}

// Logout revokes the caller's token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)
	if err := h.uc.Logout(c.UserContext(), claims); err != nil {
		return h.fail(c, "failed to log out", err)
	}
	return message(c, "logged out")
}
