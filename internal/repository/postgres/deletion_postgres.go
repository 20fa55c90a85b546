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
	"github.com/lib/pq"
)

type deletionRequestRepository struct {
	db *sqlx.DB
}

// NewDeletionRequestRepository creates a new PostgreSQL deletion request repository
func NewDeletionRequestRepository(db *sqlx.DB) repository.DeletionRequestRepository {
	return &deletionRequestRepository{db: db}
}

// Create inserts a new deletion request into the database
func (r *deletionRequestRepository) Create(ctx context.Context, request *domain.DeletionRequest) error {
	query := `
		INSERT INTO data_deletion_requests (
			id, user_email, verification_token, scheduled_date, status, created_at
		) VALUES (
			:id, :user_email, :verification_token, :scheduled_date, :status, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, request)
	if err != nil {
		return fmt.Errorf("failed to create deletion request: %w", err)
	}

	return nil
}

// GetByID retrieves a deletion request by its ID
func (r *deletionRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeletionRequest, error) {
	query := `
		SELECT id, user_email, verification_token, scheduled_date, status, created_at
		FROM data_deletion_requests
		WHERE id = $1`

	var request domain.DeletionRequest
	err := r.db.GetContext(ctx, &request, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deletion request by id: %w", err)
	}

	return &request, nil
}

// GetPendingByUserEmail returns the user's open request, if any
func (r *deletionRequestRepository) GetPendingByUserEmail(ctx context.Context, email string) (*domain.DeletionRequest, error) {
	query := `
		SELECT id, user_email, verification_token, scheduled_date, status, created_at
		FROM data_deletion_requests
		WHERE user_email = $1 AND status IN ('pending', 'confirmed')
		ORDER BY created_at DESC
		LIMIT 1`

	var request domain.DeletionRequest
	err := r.db.GetContext(ctx, &request, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending deletion request: %w", err)
	}

	return &request, nil
}

// UpdateStatus transitions a request. The allowed source statuses are part
// of the WHERE clause, so an illegal transition affects zero rows instead
// of silently overwriting a terminal state.
func (r *deletionRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []domain.DeletionStatus, to domain.DeletionStatus) (int64, error) {
	query := `
		UPDATE data_deletion_requests
		SET status = $1
		WHERE id = $2 AND status = ANY($3)`

	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, query, to, id, pq.Array(statuses))
	if err != nil {
		return 0, fmt.Errorf("failed to update deletion request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// GetDue returns confirmed requests whose scheduled date has passed
func (r *deletionRequestRepository) GetDue(ctx context.Context, now time.Time) ([]*domain.DeletionRequest, error) {
	query := `
		SELECT id, user_email, verification_token, scheduled_date, status, created_at
		FROM data_deletion_requests
		WHERE status = 'confirmed' AND scheduled_date <= $1
		ORDER BY scheduled_date`

	var requests []*domain.DeletionRequest
	err := r.db.SelectContext(ctx, &requests, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due deletion requests: %w", err)
	}

	return requests, nil
}
