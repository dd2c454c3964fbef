package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mokili-id/mokili_id/internal/auth"
)

// RegisterAuthRoutes wires the four authentication operations.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/token", h.IssueAfterOtp)
	group.Post("/pin", h.SetPin)
	if rateLimiter != nil {
		group.Post("/pin/login", rateLimiter, h.LoginWithPin)
	} else {
		group.Post("/pin/login", h.LoginWithPin)
	}
	group.Post("/profile", h.FetchProfile)
}
