package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/middleware"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, auth.Identity, error)
	CookieDuration() time.Duration
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func parseCredentials(c *fiber.Ctx) (credentials, error) {
	var input credentials
	if err := c.BodyParser(&input); err != nil {
		return credentials{}, apperr.Validation("Invalid request body")
	}
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return credentials{}, apperr.Validation("email and password are required")
	}
	return input, nil
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	input, err := parseCredentials(c)
	if err != nil {
		return err
	}

	tokenStr, identity, err := h.auth.Login(c.UserContext(), strings.ToLower(input.Email), input.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    tokenStr,
		Expires:  time.Now().Add(h.auth.CookieDuration()),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Lax",
	})

	return success(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": tokenStr,
		"user":  identity,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return success(c, fiber.StatusOK, "Logout successful", nil)
}
