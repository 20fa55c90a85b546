package handler

import (
	"errors"
	"log"

	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/VadymFES/dekop-compliance/pkg/validator"
	"github.com/gofiber/fiber/v2"
)

type DeletionHandler struct {
	deletions *service.DeletionService
	validate  *validator.Validator
}

func NewDeletionHandler(deletions *service.DeletionService, validate *validator.Validator) *DeletionHandler {
	return &DeletionHandler{deletions: deletions, validate: validate}
}

// RequestDeletion opens a right-to-erasure request for the current user.
// POST /api/v1/gdpr/deletion-request
func (h *DeletionHandler) RequestDeletion(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	request, err := h.deletions.ScheduleDeletionRequest(c.Context(), userEmail)
	if err != nil {
		if errors.Is(err, service.ErrDeletionRequestExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a deletion request is already open for this account",
			})
		}
		log.Printf("[DELETION] Scheduling for %s failed: %v", userEmail, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not schedule the deletion request, please try again later",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "deletion scheduled; check your inbox to confirm the request",
		"scheduled_date": request.ScheduledDate,
	})
}

type ConfirmDeletionRequest struct {
	Token string `json:"token" validate:"required,len=64"`
}

// ConfirmDeletion verifies the emailed token and locks in the request.
// POST /api/v1/gdpr/deletion-request/confirm
func (h *DeletionHandler) ConfirmDeletion(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	var req ConfirmDeletionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err := h.deletions.ConfirmDeletionRequest(c.Context(), userEmail, req.Token)
	if err != nil {
		// Bad tokens and missing requests get the same answer.
		if errors.Is(err, service.ErrDeletionVerification) || errors.Is(err, service.ErrDeletionRequestNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no matching deletion request",
			})
		}
		log.Printf("[DELETION] Confirmation for %s failed: %v", userEmail, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not confirm the deletion request, please try again later",
		})
	}

	return c.JSON(fiber.Map{
		"message": "deletion request confirmed",
	})
}

// CancelDeletion aborts a scheduled deletion before its date.
// DELETE /api/v1/gdpr/deletion-request
func (h *DeletionHandler) CancelDeletion(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	err := h.deletions.CancelDeletionRequest(c.Context(), userEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeletionRequestNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no matching deletion request",
			})
		case errors.Is(err, service.ErrDeletionRequestDue):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "the deletion request is past its scheduled date and can no longer be cancelled",
			})
		}
		log.Printf("[DELETION] Cancellation for %s failed: %v", userEmail, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not cancel the deletion request, please try again later",
		})
	}

	return c.JSON(fiber.Map{
		"message": "deletion request cancelled",
	})
}
