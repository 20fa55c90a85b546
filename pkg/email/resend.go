package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendEmailService implements EmailService using Resend
type ResendEmailService struct {
	client *resend.Client
	config *EmailConfig
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(config *EmailConfig) (*ResendEmailService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	client := resend.NewClient(config.APIKey)

	return &ResendEmailService{
		client: client,
		config: config,
	}, nil
}

// SendDeletionVerificationEmail sends the confirmation link for a scheduled deletion
func (s *ResendEmailService) SendDeletionVerificationEmail(ctx context.Context, to, token string, scheduledDate time.Time) error {
	verificationURL := fmt.Sprintf("%s?token=%s", s.config.VerificationURL, token)
	htmlContent := DeletionVerificationTemplate(verificationURL, scheduledDate)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: "Confirm Your Data Deletion Request",
		Html:    htmlContent,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send deletion verification email to %s: %v", to, err)
		return fmt.Errorf("failed to send deletion verification email: %w", err)
	}

	log.Printf("Deletion verification email sent to %s (ID: %s)", to, sent.Id)
	return nil
}

// SendDeletionCancelledEmail notifies the user that a scheduled deletion was cancelled
func (s *ResendEmailService) SendDeletionCancelledEmail(ctx context.Context, to string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: "Your Data Deletion Request Was Cancelled",
		Html:    DeletionCancelledTemplate(),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send deletion cancelled email to %s: %v", to, err)
		return fmt.Errorf("failed to send deletion cancelled email: %w", err)
	}

	log.Printf("Deletion cancelled email sent to %s (ID: %s)", to, sent.Id)
	return nil
}

// SendDeletionCompletedEmail notifies the user that their data has been erased
func (s *ResendEmailService) SendDeletionCompletedEmail(ctx context.Context, to string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: "Your Data Has Been Deleted",
		Html:    DeletionCompletedTemplate(),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send deletion completed email to %s: %v", to, err)
		return fmt.Errorf("failed to send deletion completed email: %w", err)
	}

	log.Printf("Deletion completed email sent to %s (ID: %s)", to, sent.Id)
	return nil
}
