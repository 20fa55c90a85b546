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

var ErrPolicyRecording = errors.New("privacy policy acceptance recording failed")

// PolicyService tracks privacy-policy acceptances. Acceptance rows are
// append-only; the latest row decides whether the user is current.
type PolicyService struct {
	policyRepo repository.PolicyAcceptanceRepository
	audit      *AuditService
}

func NewPolicyService(policyRepo repository.PolicyAcceptanceRepository, audit *AuditService) *PolicyService {
	return &PolicyService{policyRepo: policyRepo, audit: audit}
}

// RecordAcceptance appends one acceptance event.
func (s *PolicyService) RecordAcceptance(ctx context.Context, userEmail, version string, metadata *domain.SessionMetadata) error {
	acceptance := &domain.PolicyAcceptance{
		UserEmail:  userEmail,
		Version:    version,
		AcceptedAt: time.Now(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			acceptance.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			acceptance.UserAgent = &metadata.UserAgent
		}
	}

	if err := s.policyRepo.Create(ctx, acceptance); err != nil {
		return fmt.Errorf("%w: %w", ErrPolicyRecording, err)
	}

	s.audit.Log(ctx, userEmail, domain.AuditPolicyAccepted, map[string]interface{}{
		"version": version,
	})

	return nil
}

// HasAcceptedLatest reports whether the user's most recent acceptance
// matches the current policy version. No acceptance on record, an older
// version, and storage faults all force reacceptance.
func (s *PolicyService) HasAcceptedLatest(ctx context.Context, userEmail, currentVersion string) bool {
	latest, err := s.policyRepo.GetLatestByUserEmail(ctx, userEmail)
	if err != nil {
		log.Printf("[POLICY] Acceptance check degraded to reacceptance for %s: %v", userEmail, err)
		return false
	}
	if latest == nil {
		return false
	}

	return latest.Version == currentVersion
}
