package repository

import (
	"context"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetActiveByTokenHash returns the session matching the hash that is
	// neither revoked nor expired, or nil when no such session exists.
	GetActiveByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	GetActiveByUserEmail(ctx context.Context, email string) ([]*domain.Session, error)
	Touch(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID) error
	// Extend moves expires_at forward only for non-revoked sessions and
	// reports how many rows changed. A revoked session is never revived.
	Extend(ctx context.Context, id uuid.UUID, ttlSeconds int) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteByUserEmail(ctx context.Context, email string) (int64, error)
}
