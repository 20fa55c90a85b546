package email

import (
	"context"
	"log"
	"time"
)

// NoopEmailService is used when email delivery is disabled. Sends are
// logged and reported as successful.
type NoopEmailService struct{}

func NewNoopEmailService() *NoopEmailService {
	return &NoopEmailService{}
}

func (s *NoopEmailService) SendDeletionVerificationEmail(ctx context.Context, to, token string, scheduledDate time.Time) error {
	log.Printf("[EMAIL] Delivery disabled; skipping deletion verification email to %s", to)
	return nil
}

func (s *NoopEmailService) SendDeletionCancelledEmail(ctx context.Context, to string) error {
	log.Printf("[EMAIL] Delivery disabled; skipping deletion cancelled email to %s", to)
	return nil
}

func (s *NoopEmailService) SendDeletionCompletedEmail(ctx context.Context, to string) error {
	log.Printf("[EMAIL] Delivery disabled; skipping deletion completed email to %s", to)
	return nil
}
