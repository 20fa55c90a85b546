package repository

import (
	"context"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/google/uuid"
)

type DeletionRequestRepository interface {
	Create(ctx context.Context, request *domain.DeletionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeletionRequest, error)
	GetPendingByUserEmail(ctx context.Context, email string) (*domain.DeletionRequest, error)
	// UpdateStatus transitions a request and reports whether any row matched
	// the expected current statuses; illegal transitions affect zero rows.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []domain.DeletionStatus, to domain.DeletionStatus) (int64, error)
	// GetDue returns confirmed requests whose scheduled date has passed.
	GetDue(ctx context.Context, now time.Time) ([]*domain.DeletionRequest, error)
}
