package handler

import (
	"errors"

	"github.com/VadymFES/dekop-compliance/internal/config"
	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/VadymFES/dekop-compliance/pkg/validator"
	"github.com/gofiber/fiber/v2"
)

type ConsentHandler struct {
	consents *service.ConsentService
	policy   *service.PolicyService
	cfg      *config.Config
	validate *validator.Validator
}

func NewConsentHandler(consents *service.ConsentService, policy *service.PolicyService, cfg *config.Config, validate *validator.Validator) *ConsentHandler {
	return &ConsentHandler{
		consents: consents,
		policy:   policy,
		cfg:      cfg,
		validate: validate,
	}
}

type RecordConsentRequest struct {
	ConsentType string `json:"consent_type" validate:"required,oneof=cookies marketing analytics data_processing third_party"`
	Granted     bool   `json:"granted"`
	Version     string `json:"version" validate:"required,max=20"`
}

// RecordConsent upserts one consent decision for the current user.
// POST /api/v1/gdpr/consents
func (h *ConsentHandler) RecordConsent(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	var req RecordConsentRequest
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

	metadata := requestMetadata(c)
	err := h.consents.Record(c.Context(), userEmail, domain.ConsentType(req.ConsentType), req.Granted, req.Version, metadata)
	if err != nil {
		if errors.Is(err, service.ErrInvalidConsent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown consent type",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record consent",
		})
	}

	return c.JSON(fiber.Map{
		"message": "consent recorded",
	})
}

// GetConsents lists the current user's consent state.
// GET /api/v1/gdpr/consents
func (h *ConsentHandler) GetConsents(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	records := h.consents.GetUserConsents(c.Context(), userEmail)

	return c.JSON(fiber.Map{
		"consents": records,
		"count":    len(records),
	})
}

// RevokeConsent withdraws one consent category.
// DELETE /api/v1/gdpr/consents/:type
func (h *ConsentHandler) RevokeConsent(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	consentType := domain.ConsentType(c.Params("type"))
	if err := h.consents.Revoke(c.Context(), userEmail, consentType); err != nil {
		if errors.Is(err, service.ErrInvalidConsent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown consent type",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to revoke consent",
		})
	}

	return c.JSON(fiber.Map{
		"message": "consent revoked",
	})
}

type AcceptPolicyRequest struct {
	Version string `json:"version" validate:"required,max=20"`
}

// AcceptPolicy records acceptance of a privacy policy version.
// POST /api/v1/gdpr/privacy-policy/accept
func (h *ConsentHandler) AcceptPolicy(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	var req AcceptPolicyRequest
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

	if err := h.policy.RecordAcceptance(c.Context(), userEmail, req.Version, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record acceptance",
		})
	}

	return c.JSON(fiber.Map{
		"message": "privacy policy acceptance recorded",
	})
}

// PolicyStatus reports whether the current user has accepted the current
// policy version.
// GET /api/v1/gdpr/privacy-policy/status
func (h *ConsentHandler) PolicyStatus(c *fiber.Ctx) error {
	userEmail, ok := currentUserEmail(c)
	if !ok {
		return unauthorized(c)
	}

	current := h.cfg.Security.PolicyVersion
	return c.JSON(fiber.Map{
		"current_version": current,
		"accepted":        h.policy.HasAcceptedLatest(c.Context(), userEmail, current),
	})
}
