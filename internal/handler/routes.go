package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	sessionHandler *SessionHandler,
	consentHandler *ConsentHandler,
	exportHandler *ExportHandler,
	deletionHandler *DeletionHandler,
	auditHandler *AuditHandler,
	healthHandler *HealthHandler,
	sessionMiddleware fiber.Handler,
	csrfMiddleware fiber.Handler,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// API v1
	api := app.Group("/api/v1")

	// Session bootstrap is the only unauthenticated mutation: there is no
	// session yet to bind a CSRF token to.
	api.Post("/sessions", sessionHandler.CreateSession)

	// Session-scoped routes
	authed := api.Group("", sessionMiddleware)
	authed.Get("/csrf-token", sessionHandler.IssueCSRFToken)

	// State-changing routes additionally consume a CSRF token
	protected := authed.Group("", csrfMiddleware)
	protected.Delete("/sessions/current", sessionHandler.RevokeSession)
	protected.Post("/sessions/current/extend", sessionHandler.ExtendSession)

	gdpr := protected.Group("/gdpr")
	gdpr.Get("/consents", consentHandler.GetConsents)
	gdpr.Post("/consents", consentHandler.RecordConsent)
	gdpr.Delete("/consents/:type", consentHandler.RevokeConsent)
	gdpr.Post("/privacy-policy/accept", consentHandler.AcceptPolicy)
	gdpr.Get("/privacy-policy/status", consentHandler.PolicyStatus)
	gdpr.Get("/export", exportHandler.ExportData)
	gdpr.Post("/deletion-request", deletionHandler.RequestDeletion)
	gdpr.Post("/deletion-request/confirm", deletionHandler.ConfirmDeletion)
	gdpr.Delete("/deletion-request", deletionHandler.CancelDeletion)

	// Admin routes; the back-office gateway layers its permission checks
	// on top of the validated session.
	admin := authed.Group("/admin")
	admin.Get("/audit/:email", auditHandler.GetUserAuditLog)
}
