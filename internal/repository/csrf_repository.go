package repository

import (
	"context"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/google/uuid"
)

type CSRFTokenRepository interface {
	Create(ctx context.Context, token *domain.CSRFToken) error
	// Consume atomically marks the token used, but only when it matches
	// the session, is unexpired, and has not been used. It reports whether
	// this call was the one that consumed it, so two racing validations of
	// the same token can never both succeed.
	Consume(ctx context.Context, token string, sessionID uuid.UUID) (bool, error)
	DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) (int64, error)
	// DeleteByUserEmail removes tokens belonging to any of the user's
	// sessions; used by the erasure path before the sessions themselves go.
	DeleteByUserEmail(ctx context.Context, email string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
