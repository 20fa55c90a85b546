package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/VadymFES/dekop-compliance/pkg/token"
	"github.com/google/uuid"
)

var ErrCSRFTokenIssue = errors.New("csrf token issue failed")

const (
	// DefaultCSRFTTL is the CSRF token lifetime in seconds.
	DefaultCSRFTTL = 3600

	csrfTokenHexLength = 2 * token.DefaultLength
)

// CSRFService issues one-time tokens bound to a session. A token
// validates at most once, and only against its issuing session.
type CSRFService struct {
	csrfRepo repository.CSRFTokenRepository
}

func NewCSRFService(csrfRepo repository.CSRFTokenRepository) *CSRFService {
	return &CSRFService{csrfRepo: csrfRepo}
}

// Issue generates and stores a fresh token for the session.
func (s *CSRFService) Issue(ctx context.Context, sessionID uuid.UUID, ttlSeconds int) (string, error) {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultCSRFTTL
	}

	raw, err := token.Generate(token.DefaultLength)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCSRFTokenIssue, err)
	}

	now := time.Now()
	record := &domain.CSRFToken{
		Token:     raw,
		SessionID: sessionID,
		ExpiresAt: now.Add(time.Duration(ttlSeconds) * time.Second),
		Used:      false,
		CreatedAt: now,
	}

	if err := s.csrfRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCSRFTokenIssue, err)
	}

	return raw, nil
}

// Validate consumes the token for the given session. It returns true for
// exactly one call per token; replays, cross-session submissions, expired
// tokens, malformed input, and storage faults all return false.
func (s *CSRFService) Validate(ctx context.Context, rawToken string, sessionID uuid.UUID) bool {
	if !token.ValidFormat(rawToken, csrfTokenHexLength) {
		return false
	}

	ok, err := s.csrfRepo.Consume(ctx, rawToken, sessionID)
	if err != nil {
		log.Printf("[CSRF] Validation degraded to reject: %v", err)
		return false
	}

	return ok
}
