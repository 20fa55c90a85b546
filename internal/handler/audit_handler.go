package handler

import (
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// GetUserAuditLog returns the compliance trail for one data subject,
// newest first. Admin-only; the surrounding back-office layers its
// permission check on top of the validated session.
// GET /api/v1/admin/audit/:email
func (h *AuditHandler) GetUserAuditLog(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	limit := c.QueryInt("limit", 100)
	entries := h.audit.GetLog(c.Context(), email, limit)

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}
