package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionToken extracts the bearer session token from the Authorization
// header into locals for downstream handlers. Verification happens in the
// auth core, not here.
func SessionToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		c.Locals("session_token", strings.TrimSpace(authz[len("Bearer "):]))
		return c.Next()
	}
}
