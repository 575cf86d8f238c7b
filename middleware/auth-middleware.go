package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/auth"
)

const (
	userKey    = "user"
	CookieName = "JWT"
)

type TokenVerifier interface {
	Verify(tokenStr string) (auth.Identity, error)
}

// AuthMiddleware accepts a bearer token or the JWT cookie and stores the
// caller's identity in the request locals.
func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		var tokenStr string

		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenStr = strings.TrimSpace(authHeader[7:])
		} else {
			tokenStr = c.Cookies(CookieName)
		}

		if tokenStr == "" {
			return apperr.Authentication("You are not authorized!")
		}

		identity, err := verifier.Verify(tokenStr)
		if err != nil {
			return err
		}

		c.Locals(userKey, identity)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (auth.Identity, error) {
	identity, ok := c.Locals(userKey).(auth.Identity)
	if !ok || identity.UserID == 0 {
		return auth.Identity{}, apperr.Authentication("You are not authorized!")
	}
	return identity, nil
}
