package handler

import (
	"time"

	"github.com/VadymFES/dekop-compliance/internal/config"
	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/handler/middleware"
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/VadymFES/dekop-compliance/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessions *service.SessionService
	csrf     *service.CSRFService
	cfg      *config.Config
	validate *validator.Validator
}

func NewSessionHandler(sessions *service.SessionService, csrf *service.CSRFService, cfg *config.Config, validate *validator.Validator) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		csrf:     csrf,
		cfg:      cfg,
		validate: validate,
	}
}

type CreateSessionRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	DeviceLabel string `json:"device_label" validate:"omitempty,max=100"`
}

// CreateSession starts a browsing session. Anonymous requests get the
// 7-day cart lifetime; identified ones get the standard session TTL.
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var userEmail *string
	ttl := h.cfg.Security.AnonymousTTLSeconds
	if req.Email != "" {
		userEmail = &req.Email
		ttl = h.cfg.Security.SessionTTLSeconds
	}

	metadata := &domain.SessionMetadata{
		IPAddress:   c.IP(),
		UserAgent:   c.Get("User-Agent"),
		DeviceLabel: req.DeviceLabel,
	}

	created, err := h.sessions.Create(c.Context(), userEmail, metadata, ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create session",
		})
	}

	h.setSessionCookie(c, created.Token, created.ExpiresAt)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": created.SessionID,
		"expires_at": created.ExpiresAt,
	})
}

// RevokeSession terminates the current session and clears the cookie.
// DELETE /api/v1/sessions/current
func (h *SessionHandler) RevokeSession(c *fiber.Ctx) error {
	sessionID, ok := c.Locals("session_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	if err := h.sessions.Revoke(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to revoke session",
		})
	}

	h.clearSessionCookie(c)

	return c.JSON(fiber.Map{
		"message": "session revoked",
	})
}

// ExtendSession pushes the current session's expiry forward.
// POST /api/v1/sessions/current/extend
func (h *SessionHandler) ExtendSession(c *fiber.Ctx) error {
	sessionID, ok := c.Locals("session_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	if err := h.sessions.Extend(c.Context(), sessionID, h.cfg.Security.SessionTTLSeconds); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to extend session",
		})
	}

	return c.JSON(fiber.Map{
		"message": "session extended",
	})
}

// IssueCSRFToken hands out a one-time token for the current session.
// GET /api/v1/csrf-token
func (h *SessionHandler) IssueCSRFToken(c *fiber.Ctx) error {
	sessionID, ok := c.Locals("session_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	csrfToken, err := h.csrf.Issue(c.Context(), sessionID, h.cfg.Security.CSRFTTLSeconds)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue csrf token",
		})
	}

	return c.JSON(fiber.Map{
		"csrf_token": csrfToken,
	})
}

func (h *SessionHandler) setSessionCookie(c *fiber.Ctx, rawToken string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    rawToken,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

func (h *SessionHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}
