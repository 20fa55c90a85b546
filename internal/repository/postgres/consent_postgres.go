package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/jmoiron/sqlx"
)

type consentRepository struct {
	db *sqlx.DB
}

// NewConsentRepository creates a new PostgreSQL consent repository
func NewConsentRepository(db *sqlx.DB) repository.ConsentRepository {
	return &consentRepository{db: db}
}

// Upsert writes the current consent state for (user_email, consent_type).
// The table holds current state only; history lives in the audit log.
func (r *consentRepository) Upsert(ctx context.Context, record *domain.ConsentRecord) error {
	query := `
		INSERT INTO user_consents (
			user_email, consent_type, granted, granted_at, revoked_at,
			version, ip_address, user_agent
		) VALUES (
			:user_email, :consent_type, :granted, :granted_at, :revoked_at,
			:version, :ip_address, :user_agent
		)
		ON CONFLICT (user_email, consent_type) DO UPDATE SET
			granted    = EXCLUDED.granted,
			granted_at = COALESCE(EXCLUDED.granted_at, user_consents.granted_at),
			revoked_at = EXCLUDED.revoked_at,
			version    = EXCLUDED.version,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent`

	_, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("failed to upsert consent: %w", err)
	}

	return nil
}

// GetByUserEmail retrieves all consent rows for a user
func (r *consentRepository) GetByUserEmail(ctx context.Context, email string) ([]*domain.ConsentRecord, error) {
	query := `
		SELECT user_email, consent_type, granted, granted_at, revoked_at,
			   version, ip_address, user_agent
		FROM user_consents
		WHERE user_email = $1
		ORDER BY consent_type`

	var records []*domain.ConsentRecord
	err := r.db.SelectContext(ctx, &records, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get consents by user email: %w", err)
	}

	return records, nil
}

// RevokeAllForUser flips every consent row for the user to granted=false
func (r *consentRepository) RevokeAllForUser(ctx context.Context, email string) (int64, error) {
	query := `
		UPDATE user_consents
		SET granted = false, revoked_at = $1
		WHERE user_email = $2 AND granted = true`

	result, err := r.db.ExecContext(ctx, query, time.Now(), email)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke consents for user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

type policyAcceptanceRepository struct {
	db *sqlx.DB
}

// NewPolicyAcceptanceRepository creates a new PostgreSQL policy acceptance repository
func NewPolicyAcceptanceRepository(db *sqlx.DB) repository.PolicyAcceptanceRepository {
	return &policyAcceptanceRepository{db: db}
}

// Create appends one acceptance row. Acceptances are never updated.
func (r *policyAcceptanceRepository) Create(ctx context.Context, acceptance *domain.PolicyAcceptance) error {
	query := `
		INSERT INTO privacy_policy_acceptances (
			user_email, version, accepted_at, ip_address, user_agent
		) VALUES (
			:user_email, :version, :accepted_at, :ip_address, :user_agent
		)`

	_, err := r.db.NamedExecContext(ctx, query, acceptance)
	if err != nil {
		return fmt.Errorf("failed to create policy acceptance: %w", err)
	}

	return nil
}

// GetLatestByUserEmail returns the most recent acceptance row for a user
func (r *policyAcceptanceRepository) GetLatestByUserEmail(ctx context.Context, email string) (*domain.PolicyAcceptance, error) {
	query := `
		SELECT user_email, version, accepted_at, ip_address, user_agent
		FROM privacy_policy_acceptances
		WHERE user_email = $1
		ORDER BY accepted_at DESC
		LIMIT 1`

	var acceptance domain.PolicyAcceptance
	err := r.db.GetContext(ctx, &acceptance, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest policy acceptance: %w", err)
	}

	return &acceptance, nil
}

// GetByUserEmail retrieves the full acceptance history for a user
func (r *policyAcceptanceRepository) GetByUserEmail(ctx context.Context, email string) ([]*domain.PolicyAcceptance, error) {
	query := `
		SELECT user_email, version, accepted_at, ip_address, user_agent
		FROM privacy_policy_acceptances
		WHERE user_email = $1
		ORDER BY accepted_at DESC`

	var acceptances []*domain.PolicyAcceptance
	err := r.db.SelectContext(ctx, &acceptances, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy acceptances: %w", err)
	}

	return acceptances, nil
}
