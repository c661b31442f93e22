package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
)

// AuthMiddleware guards the admin API behind an OIDC session.
type AuthMiddleware struct{}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{}
}

// RequireAuth ensures the request carries an authenticated session. The admin
// surface is JSON, so failures are a 401 rather than a login redirect.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	sub := sess.Get("user_sub")
	if sub == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals("user_sub", sub)
	if email := sess.Get("user_email"); email != nil {
		c.Locals("user_email", email)
	}
	return c.Next()
}
