package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/middleware"
	"github.com/krishkalaria12/snap-vault/models"
)

type UserRegistrar interface {
	Create(ctx context.Context, email, password string) (*models.User, error)
}

type UserHandler struct {
	users UserRegistrar
}

func NewUserHandler(users UserRegistrar) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	input, err := parseCredentials(c)
	if err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return err
	}

	return success(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	identity, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "User found", identity)
}

func Health(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "OK", nil)
}
