package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the compliance services.
const (
	AuditConsentUpdated           = "consent_updated"
	AuditConsentRevoked           = "consent_revoked"
	AuditPolicyAccepted           = "privacy_policy_accepted"
	AuditDataExported             = "data_exported"
	AuditDeletionRequestScheduled = "deletion_request_scheduled"
	AuditDeletionRequestConfirmed = "deletion_request_confirmed"
	AuditDeletionRequestCancelled = "deletion_request_cancelled"
	AuditDataDeletionRequested    = "data_deletion_requested"
	AuditDataDeletionCompleted    = "data_deletion_completed"
	AuditDataDeletionFailed       = "data_deletion_failed"
)

// AuditEntry is one append-only compliance event. Entries are never
// mutated or deleted.
type AuditEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserEmail string          `json:"user_email" db:"user_email"`
	Action    string          `json:"action" db:"action"`
	Details   json.RawMessage `json:"details" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
