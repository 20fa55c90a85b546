package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeletionStatus string

const (
	DeletionPending   DeletionStatus = "pending"
	DeletionConfirmed DeletionStatus = "confirmed"
	DeletionCancelled DeletionStatus = "cancelled"
	DeletionCompleted DeletionStatus = "completed"
)

// DeletionRequest is a scheduled right-to-erasure request. It stays
// cancellable until its scheduled date; only the sweep that executes the
// erasure moves it to completed.
type DeletionRequest struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	UserEmail         string         `json:"user_email" db:"user_email"`
	VerificationToken string         `json:"-" db:"verification_token"`
	ScheduledDate     time.Time      `json:"scheduled_date" db:"scheduled_date"`
	Status            DeletionStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// DeletionOptions selects between hard deletion and anonymization per
// data category. Legal-retention carve-outs keep orders in anonymized
// form instead of removing them.
type DeletionOptions struct {
	KeepOrderHistory        bool `json:"keep_order_history"`
	KeepTransactionRecords  bool `json:"keep_transaction_records"`
	AnonymizeInsteadOfDelete bool `json:"anonymize_instead_of_delete"`
}

// DeletionReport summarises one erasure run. Counts are keyed by table
// name; an anonymized table is reported as both anonymized and retained.
type DeletionReport struct {
	Success           bool           `json:"success"`
	DeletedRecords    map[string]int `json:"deleted_records"`
	AnonymizedRecords map[string]int `json:"anonymized_records"`
	RetainedRecords   map[string]int `json:"retained_records"`
}

func NewDeletionReport() *DeletionReport {
	return &DeletionReport{
		DeletedRecords:    make(map[string]int),
		AnonymizedRecords: make(map[string]int),
		RetainedRecords:   make(map[string]int),
	}
}
