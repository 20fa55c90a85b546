package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type csrfTokenRepository struct {
	db *sqlx.DB
}

// NewCSRFTokenRepository creates a new PostgreSQL CSRF token repository
func NewCSRFTokenRepository(db *sqlx.DB) repository.CSRFTokenRepository {
	return &csrfTokenRepository{db: db}
}

// Create inserts a new CSRF token into the database
func (r *csrfTokenRepository) Create(ctx context.Context, token *domain.CSRFToken) error {
	query := `
		INSERT INTO csrf_tokens (token, session_id, expires_at, used, created_at)
		VALUES (:token, :session_id, :expires_at, :used, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to create csrf token: %w", err)
	}

	return nil
}

// Consume marks a token used in a single conditional UPDATE. The check
// and the mark are one statement, so of two racing validations only one
// can observe used=false and win the row.
func (r *csrfTokenRepository) Consume(ctx context.Context, token string, sessionID uuid.UUID) (bool, error) {
	query := `
		UPDATE csrf_tokens
		SET used = true
		WHERE token = $1 AND session_id = $2 AND used = false AND expires_at > $3`

	result, err := r.db.ExecContext(ctx, query, token, sessionID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to consume csrf token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// DeleteBySessionID removes every token issued for a session
func (r *csrfTokenRepository) DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	query := `DELETE FROM csrf_tokens WHERE session_id = $1`

	result, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete csrf tokens by session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteByUserEmail removes tokens issued for any of the user's sessions
func (r *csrfTokenRepository) DeleteByUserEmail(ctx context.Context, email string) (int64, error) {
	query := `
		DELETE FROM csrf_tokens
		WHERE session_id IN (SELECT id FROM sessions WHERE user_email = $1)`

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete csrf tokens by user email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteExpired removes all tokens past their expiry
func (r *csrfTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM csrf_tokens WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired csrf tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
