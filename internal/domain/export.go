package domain

import "time"

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportOptions toggles each data category independently. The zero value
// is not meaningful; use DefaultExportOptions, which includes everything.
type ExportOptions struct {
	Format          ExportFormat `json:"format"`
	IncludeOrders   bool         `json:"include_orders"`
	IncludeCart     bool         `json:"include_cart"`
	IncludeConsents bool         `json:"include_consents"`
	IncludeSessions bool         `json:"include_sessions"`
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:          ExportJSON,
		IncludeOrders:   true,
		IncludeCart:     true,
		IncludeConsents: true,
		IncludeSessions: true,
	}
}

// ExportedSession is a session as it appears in an export artifact.
// Token hashes are deliberately absent: an export must never carry
// credential material.
type ExportedSession struct {
	ID             string    `json:"id"`
	IPAddress      *string   `json:"ip_address,omitempty"`
	UserAgent      *string   `json:"user_agent,omitempty"`
	DeviceLabel    *string   `json:"device_label,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ExportBundle is the aggregated portable copy of one data subject's records.
type ExportBundle struct {
	ExportedAt         time.Time          `json:"exported_at"`
	PersonalInfo       *Customer          `json:"personal_info,omitempty"`
	Orders             []Order            `json:"orders,omitempty"`
	CartItems          []CartItem         `json:"cart_items,omitempty"`
	Consents           []ConsentRecord    `json:"consents,omitempty"`
	PolicyAcceptances  []PolicyAcceptance `json:"policy_acceptances,omitempty"`
	ActiveSessions     []ExportedSession  `json:"active_sessions,omitempty"`
}

// ExportResult is the rendered artifact handed back to the caller.
type ExportResult struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
}
