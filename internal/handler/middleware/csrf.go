package middleware

import (
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CSRFHeader carries the token. Tokens never travel in the URL, where
// they would leak through referrer headers and access logs.
const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware consumes a one-time token on every state-changing
// request. Safe methods pass through untouched. Must run after
// SessionMiddleware, which binds the token check to the caller's session.
func CSRFMiddleware(csrf *service.CSRFService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		sessionID, ok := c.Locals("session_id").(uuid.UUID)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if !csrf.Validate(c.Context(), c.Get(CSRFHeader), sessionID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "invalid csrf token",
			})
		}

		return c.Next()
	}
}
