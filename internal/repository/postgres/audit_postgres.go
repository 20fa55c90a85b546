package postgres

import (
	"context"
	"fmt"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/jmoiron/sqlx"
)

type auditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository creates a new PostgreSQL audit log repository
func NewAuditLogRepository(db *sqlx.DB) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append inserts one audit entry. There is no update or delete path.
func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO gdpr_audit_log (id, user_email, action, details, created_at)
		VALUES (:id, :user_email, :action, :details, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// GetByUserEmail retrieves the most recent entries for a user
func (r *auditLogRepository) GetByUserEmail(ctx context.Context, email string, limit int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, user_email, action, details, created_at
		FROM gdpr_audit_log
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var entries []*domain.AuditEntry
	err := r.db.SelectContext(ctx, &entries, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}

	return entries, nil
}
