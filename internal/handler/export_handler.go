package handler

import (
	"fmt"
	"log"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ExportHandler struct {
	exports *service.ExportService
}

func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportData streams the current user's data as a downloadable artifact.
// GET /api/v1/gdpr/export?format=json|csv
func (h *ExportHandler) ExportData(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	opts := domain.DefaultExportOptions()
	if c.Query("format") == "csv" {
		opts.Format = domain.ExportCSV
	}
	opts.IncludeOrders = c.QueryBool("include_orders", true)
	opts.IncludeCart = c.QueryBool("include_cart", true)
	opts.IncludeConsents = c.QueryBool("include_consents", true)
	opts.IncludeSessions = c.QueryBool("include_sessions", true)

	result, err := h.exports.ExportUserData(c.Context(), userEmail, opts)
	if err != nil {
		// The cause stays server-side; the client gets an actionable but
		// non-technical message.
		log.Printf("[EXPORT] Export for %s failed: %v", userEmail, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "data export is temporarily unavailable, please try again later",
		})
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.Filename))
	return c.Send(result.Data)
}
