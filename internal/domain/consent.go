package domain

import "time"

// ConsentType identifies one category of data processing a customer can
// grant or withdraw independently.
type ConsentType string

const (
	ConsentCookies        ConsentType = "cookies"
	ConsentMarketing      ConsentType = "marketing"
	ConsentAnalytics      ConsentType = "analytics"
	ConsentDataProcessing ConsentType = "data_processing"
	ConsentThirdParty     ConsentType = "third_party"
)

// AllConsentTypes lists every recognised consent category.
var AllConsentTypes = []ConsentType{
	ConsentCookies,
	ConsentMarketing,
	ConsentAnalytics,
	ConsentDataProcessing,
	ConsentThirdParty,
}

// Valid reports whether t is a recognised consent category.
func (t ConsentType) Valid() bool {
	switch t {
	case ConsentCookies, ConsentMarketing, ConsentAnalytics, ConsentDataProcessing, ConsentThirdParty:
		return true
	}
	return false
}

// ConsentRecord holds the current consent state for one (user, type) pair.
// Rows are upserted in place; the change history lives in the audit log.
type ConsentRecord struct {
	UserEmail   string      `json:"user_email" db:"user_email"`
	ConsentType ConsentType `json:"consent_type" db:"consent_type"`
	Granted     bool        `json:"granted" db:"granted"`
	GrantedAt   *time.Time  `json:"granted_at,omitempty" db:"granted_at"`
	RevokedAt   *time.Time  `json:"revoked_at,omitempty" db:"revoked_at"`
	Version     string      `json:"version" db:"version"`
	IPAddress   *string     `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   *string     `json:"user_agent,omitempty" db:"user_agent"`
}

// PolicyAcceptance records one acceptance of a privacy policy version.
// Acceptances are append-only; the latest row per user decides currency.
type PolicyAcceptance struct {
	UserEmail  string    `json:"user_email" db:"user_email"`
	Version    string    `json:"version" db:"version"`
	AcceptedAt time.Time `json:"accepted_at" db:"accepted_at"`
	IPAddress  *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string   `json:"user_agent,omitempty" db:"user_agent"`
}
