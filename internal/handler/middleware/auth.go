package middleware

import (
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the HTTP-only session cookie.
const SessionCookie = "dekop_session"

// SessionMiddleware resolves the session cookie to a live session and
// stores it in fiber.Locals. Requests without a valid session are
// rejected with a generic unauthorized response: the client cannot tell
// a missing cookie from a revoked or expired one.
func SessionMiddleware(sessions *service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookie)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		session := sessions.Validate(c.Context(), raw)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("session", session)
		c.Locals("session_id", session.ID)
		if session.UserEmail != nil {
			c.Locals("user_email", *session.UserEmail)
		}

		return c.Next()
	}
}
