package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/VadymFES/dekop-compliance/pkg/revocation"
	"github.com/VadymFES/dekop-compliance/pkg/token"
	"github.com/google/uuid"
)

// Custom errors
var (
	ErrSessionCreation   = errors.New("session creation failed")
	ErrSessionRevocation = errors.New("session revocation failed")
	ErrSessionExtension  = errors.New("session extension failed")
)

const (
	// DefaultSessionTTL is the authenticated session lifetime.
	DefaultSessionTTL = 86400
	// AnonymousCartTTL is the lifetime of anonymous cart sessions (7 days).
	AnonymousCartTTL = 604800

	sessionTokenHexLength = 2 * token.DefaultLength
)

// CreatedSession carries the one and only exposure of a raw session
// token. Only its hash is ever persisted.
type CreatedSession struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionService struct {
	sessionRepo repository.SessionRepository
	csrfRepo    repository.CSRFTokenRepository
	revocations *revocation.Cache
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	csrfRepo repository.CSRFTokenRepository,
	revocations *revocation.Cache,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		csrfRepo:    csrfRepo,
		revocations: revocations,
	}
}

// Create generates a fresh token, persists its hash together with the
// session metadata, and returns the raw token to the caller.
func (s *SessionService) Create(ctx context.Context, userEmail *string, metadata *domain.SessionMetadata, ttlSeconds int) (*CreatedSession, error) {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultSessionTTL
	}

	raw, err := token.Generate(token.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCreation, err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:             uuid.New(),
		TokenHash:      token.Hash(raw),
		UserEmail:      userEmail,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(time.Duration(ttlSeconds) * time.Second),
		Revoked:        false,
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			session.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			session.UserAgent = &metadata.UserAgent
		}
		if metadata.DeviceLabel != "" {
			session.DeviceLabel = &metadata.DeviceLabel
		}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCreation, err)
	}

	return &CreatedSession{
		SessionID: session.ID,
		Token:     raw,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Validate resolves a raw bearer token to its live session, or nil.
// Malformed tokens are rejected before any storage access; a revoked,
// expired, or unknown token and a storage fault all yield nil, so the
// caller cannot distinguish them and a store outage fails closed.
func (s *SessionService) Validate(ctx context.Context, rawToken string) *domain.Session {
	if !token.ValidFormat(rawToken, sessionTokenHexLength) {
		return nil
	}

	tokenHash := token.Hash(rawToken)

	// Fast-path reject via the revocation cache. Cache faults fall
	// through to the database, which filters revoked rows anyway.
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, tokenHash)
		if err != nil {
			log.Printf("[SESSION] Revocation cache unavailable: %v", err)
		} else if revoked {
			return nil
		}
	}

	session, err := s.sessionRepo.GetActiveByTokenHash(ctx, tokenHash)
	if err != nil {
		log.Printf("[SESSION] Token validation degraded to unauthenticated: %v", err)
		return nil
	}
	if session == nil {
		return nil
	}

	// Sliding-window touch. A failed touch does not invalidate an
	// otherwise live session.
	if err := s.sessionRepo.Touch(ctx, session.ID); err != nil {
		log.Printf("[SESSION] Failed to update last_accessed_at for %s: %v", session.ID, err)
	}

	return session
}

// Revoke terminates a session. Revocation is idempotent and terminal;
// CSRF tokens issued for the session die with it.
func (s *SessionService) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionRevocation, err)
	}

	if err := s.sessionRepo.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionRevocation, err)
	}

	if session != nil {
		if s.revocations != nil {
			if err := s.revocations.MarkRevoked(ctx, session.TokenHash, time.Until(session.ExpiresAt)); err != nil {
				log.Printf("[SESSION] Failed to cache revocation for %s: %v", sessionID, err)
			}
		}
		if _, err := s.csrfRepo.DeleteBySessionID(ctx, sessionID); err != nil {
			log.Printf("[SESSION] Failed to purge csrf tokens for %s: %v", sessionID, err)
		}
	}

	return nil
}

// Extend pushes the expiry forward for an active session. A revoked or
// absent session affects zero rows and the call is a silent no-op.
func (s *SessionService) Extend(ctx context.Context, sessionID uuid.UUID, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultSessionTTL
	}

	if _, err := s.sessionRepo.Extend(ctx, sessionID, ttlSeconds); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionExtension, err)
	}

	return nil
}

// CleanupExpired removes sessions past expiry together with stale CSRF
// tokens. Best-effort background task: faults are logged and reported
// as zero removals.
func (s *SessionService) CleanupExpired(ctx context.Context) int64 {
	removed, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("[SESSION] Expired session cleanup failed: %v", err)
		return 0
	}

	if _, err := s.csrfRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[SESSION] Expired csrf token cleanup failed: %v", err)
	}

	return removed
}
