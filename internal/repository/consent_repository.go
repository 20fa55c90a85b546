package repository

import (
	"context"

	"github.com/VadymFES/dekop-compliance/internal/domain"
)

type ConsentRepository interface {
	// Upsert writes the current consent state for (user_email, consent_type),
	// overwriting any previous row.
	Upsert(ctx context.Context, record *domain.ConsentRecord) error
	GetByUserEmail(ctx context.Context, email string) ([]*domain.ConsentRecord, error)
	// RevokeAllForUser flips every consent row for the user to granted=false
	// without deleting them, preserving the legal trail during erasure.
	RevokeAllForUser(ctx context.Context, email string) (int64, error)
}

type PolicyAcceptanceRepository interface {
	Create(ctx context.Context, acceptance *domain.PolicyAcceptance) error
	// GetLatestByUserEmail returns the most recent acceptance row, or nil
	// when the user has never accepted any version.
	GetLatestByUserEmail(ctx context.Context, email string) (*domain.PolicyAcceptance, error)
	GetByUserEmail(ctx context.Context, email string) ([]*domain.PolicyAcceptance, error)
}
