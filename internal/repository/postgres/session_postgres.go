package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new session into the database
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (
			id, token_hash, user_email, ip_address, user_agent, device_label,
			created_at, last_accessed_at, expires_at, revoked
		) VALUES (
			:id, :token_hash, :user_email, :ip_address, :user_agent, :device_label,
			:created_at, :last_accessed_at, :expires_at, :revoked
		)`

	_, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetActiveByTokenHash retrieves a live session by its token hash.
// Revoked and expired sessions are filtered in the query itself so a
// revoke committed before this lookup is always observed.
func (r *sessionRepository) GetActiveByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, token_hash, user_email, ip_address, user_agent, device_label,
			   created_at, last_accessed_at, expires_at, revoked
		FROM sessions
		WHERE token_hash = $1 AND revoked = false AND expires_at > $2`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, tokenHash, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by token hash: %w", err)
	}

	return &session, nil
}

// GetByID retrieves a session by its ID
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, token_hash, user_email, ip_address, user_agent, device_label,
			   created_at, last_accessed_at, expires_at, revoked
		FROM sessions
		WHERE id = $1`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return &session, nil
}

// GetActiveByUserEmail retrieves all live sessions belonging to a user
func (r *sessionRepository) GetActiveByUserEmail(ctx context.Context, email string) ([]*domain.Session, error) {
	query := `
		SELECT id, token_hash, user_email, ip_address, user_agent, device_label,
			   created_at, last_accessed_at, expires_at, revoked
		FROM sessions
		WHERE user_email = $1 AND revoked = false AND expires_at > $2
		ORDER BY created_at DESC`

	var sessions []*domain.Session
	err := r.db.SelectContext(ctx, &sessions, query, email, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by user email: %w", err)
	}

	return sessions, nil
}

// Touch updates last_accessed_at after a successful validation
func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET last_accessed_at = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// Revoke marks a session revoked. Revocation is idempotent and terminal.
func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET revoked = true WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// Extend moves expires_at forward for a non-revoked session. The revoked
// check lives in the WHERE clause: a revoked session affects zero rows.
func (r *sessionRepository) Extend(ctx context.Context, id uuid.UUID, ttlSeconds int) (int64, error) {
	query := `
		UPDATE sessions
		SET expires_at = $1
		WHERE id = $2 AND revoked = false`

	expiresAt := time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	result, err := r.db.ExecContext(ctx, query, expiresAt, id)
	if err != nil {
		return 0, fmt.Errorf("failed to extend session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteExpired removes all sessions past their expiry
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteByUserEmail removes every session belonging to a user
func (r *sessionRepository) DeleteByUserEmail(ctx context.Context, email string) (int64, error) {
	query := `DELETE FROM sessions WHERE user_email = $1`

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions by user email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
