package email

import (
	"context"
	"time"
)

// EmailService defines the interface for sending compliance notices
type EmailService interface {
	// SendDeletionVerificationEmail sends the confirmation link for a
	// scheduled data deletion request
	SendDeletionVerificationEmail(ctx context.Context, to, token string, scheduledDate time.Time) error

	// SendDeletionCancelledEmail notifies the user that a scheduled
	// deletion was cancelled
	SendDeletionCancelledEmail(ctx context.Context, to string) error

	// SendDeletionCompletedEmail notifies the user that their data has
	// been erased
	SendDeletionCompletedEmail(ctx context.Context, to string) error
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	APIKey          string
	FromEmail       string
	FromName        string
	VerificationURL string // base URL of the deletion confirmation page
}
