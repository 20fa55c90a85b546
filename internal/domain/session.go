package domain

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TokenHash      string    `json:"-" db:"token_hash"`
	UserEmail      *string   `json:"user_email,omitempty" db:"user_email"`
	IPAddress      *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      *string   `json:"user_agent,omitempty" db:"user_agent"`
	DeviceLabel    *string   `json:"device_label,omitempty" db:"device_label"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at" db:"last_accessed_at"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	Revoked        bool      `json:"revoked" db:"revoked"`
}

// SessionMetadata is the request context captured when a session is created.
type SessionMetadata struct {
	IPAddress   string `json:"ip_address,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	DeviceLabel string `json:"device_label,omitempty"`
}

// Active reports whether the session is usable at the given instant.
// Expired and revoked sessions are indistinguishable to callers.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(now)
}
