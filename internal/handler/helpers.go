package handler

import (
	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// currentUserEmail returns the identity bound to the session by the auth
// middleware. Anonymous cart sessions have none and cannot reach the
// GDPR self-service surface.
func currentUserEmail(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals("user_email").(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

func requestMetadata(c *fiber.Ctx) *domain.SessionMetadata {
	return &domain.SessionMetadata{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}
