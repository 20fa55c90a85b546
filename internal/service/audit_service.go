package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/google/uuid"
)

const defaultAuditLimit = 100

// AuditService records compliance-relevant actions. Logging is a side
// effect of the primary operations, never a correctness dependency:
// Log cannot fail from the caller's point of view.
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log appends one audit entry. Storage faults are logged and swallowed so
// that a failing audit write never blocks the operation it documents.
func (s *AuditService) Log(ctx context.Context, userEmail, action string, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		log.Printf("[AUDIT] Failed to marshal details for %s: %v", action, err)
		payload = []byte("{}")
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		UserEmail: userEmail,
		Action:    action,
		Details:   payload,
		CreatedAt: time.Now(),
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		log.Printf("[AUDIT] Failed to append %s entry for %s: %v", action, userEmail, err)
	}
}

// GetLog returns the most recent entries for a user, newest first.
// Storage faults degrade to an empty slice.
func (s *AuditService) GetLog(ctx context.Context, userEmail string, limit int) []*domain.AuditEntry {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	entries, err := s.auditRepo.GetByUserEmail(ctx, userEmail, limit)
	if err != nil {
		log.Printf("[AUDIT] Failed to read audit log for %s: %v", userEmail, err)
		return []*domain.AuditEntry{}
	}
	if entries == nil {
		return []*domain.AuditEntry{}
	}

	return entries
}
