package repository

import (
	"context"

	"github.com/VadymFES/dekop-compliance/internal/domain"
)

type AuditLogRepository interface {
	// Append inserts one entry. The log is append-only: there is no update
	// or delete operation on this interface.
	Append(ctx context.Context, entry *domain.AuditEntry) error
	GetByUserEmail(ctx context.Context, email string, limit int) ([]*domain.AuditEntry, error)
}
