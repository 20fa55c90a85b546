package domain

import (
	"time"

	"github.com/google/uuid"
)

// CSRFToken is a one-time token bound to the session it was issued for.
// A token validates at most once; consumption is an atomic check-and-mark
// at the storage layer.
type CSRFToken struct {
	Token     string    `json:"token" db:"token"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
