package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
)

// Custom errors
var (
	ErrConsentRecording = errors.New("consent recording failed")
	ErrInvalidConsent   = errors.New("unknown consent type")
)

// ConsentService maintains the current consent state per (user, type).
// Unlike audit writes, consent writes must be visible failures: a caller
// that believes consent was recorded when it was not is a compliance bug.
type ConsentService struct {
	consentRepo repository.ConsentRepository
	audit       *AuditService
}

func NewConsentService(consentRepo repository.ConsentRepository, audit *AuditService) *ConsentService {
	return &ConsentService{consentRepo: consentRepo, audit: audit}
}

// Record upserts one consent decision. Granting stamps granted_at and
// clears revoked_at; revoking stamps revoked_at and keeps the previous
// granted_at in the row.
func (s *ConsentService) Record(ctx context.Context, userEmail string, consentType domain.ConsentType, granted bool, version string, metadata *domain.SessionMetadata) error {
	if !consentType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidConsent, consentType)
	}

	now := time.Now()
	record := &domain.ConsentRecord{
		UserEmail:   userEmail,
		ConsentType: consentType,
		Granted:     granted,
		Version:     version,
	}
	if granted {
		record.GrantedAt = &now
	} else {
		record.RevokedAt = &now
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			record.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			record.UserAgent = &metadata.UserAgent
		}
	}

	if err := s.consentRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", ErrConsentRecording, err)
	}

	s.audit.Log(ctx, userEmail, domain.AuditConsentUpdated, map[string]interface{}{
		"consent_type": consentType,
		"granted":      granted,
		"version":      version,
	})

	return nil
}

// Revoke withdraws one consent category.
func (s *ConsentService) Revoke(ctx context.Context, userEmail string, consentType domain.ConsentType) error {
	if !consentType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidConsent, consentType)
	}

	now := time.Now()
	record := &domain.ConsentRecord{
		UserEmail:   userEmail,
		ConsentType: consentType,
		Granted:     false,
		RevokedAt:   &now,
	}

	if err := s.consentRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", ErrConsentRecording, err)
	}

	s.audit.Log(ctx, userEmail, domain.AuditConsentRevoked, map[string]interface{}{
		"consent_type": consentType,
	})

	return nil
}

// GetUserConsents returns all consent rows for a user. Storage faults
// degrade to an empty slice so consent-dependent UI keeps rendering.
func (s *ConsentService) GetUserConsents(ctx context.Context, userEmail string) []*domain.ConsentRecord {
	records, err := s.consentRepo.GetByUserEmail(ctx, userEmail)
	if err != nil {
		log.Printf("[CONSENT] Failed to read consents for %s: %v", userEmail, err)
		return []*domain.ConsentRecord{}
	}
	if records == nil {
		return []*domain.ConsentRecord{}
	}

	return records
}

// HasRequiredConsents reports whether every required type is currently
// granted. Missing rows, ungranted rows, and storage faults all count as
// no consent: absence of proof is treated as absence of consent.
func (s *ConsentService) HasRequiredConsents(ctx context.Context, userEmail string, required []domain.ConsentType) bool {
	if len(required) == 0 {
		return true
	}

	records, err := s.consentRepo.GetByUserEmail(ctx, userEmail)
	if err != nil {
		log.Printf("[CONSENT] Consent check degraded to deny for %s: %v", userEmail, err)
		return false
	}

	granted := make(map[domain.ConsentType]bool, len(records))
	for _, r := range records {
		granted[r.ConsentType] = r.Granted
	}

	for _, t := range required {
		if !granted[t] {
			return false
		}
	}

	return true
}
