package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
)

var ErrDataExport = errors.New("data export failed")

// ExportService aggregates a data subject's records into a portable
// bundle. Any underlying fault aborts the whole export; a partially
// assembled artifact is never returned.
type ExportService struct {
	storeRepo   repository.StoreDataRepository
	consentRepo repository.ConsentRepository
	policyRepo  repository.PolicyAcceptanceRepository
	sessionRepo repository.SessionRepository
	audit       *AuditService
}

func NewExportService(
	storeRepo repository.StoreDataRepository,
	consentRepo repository.ConsentRepository,
	policyRepo repository.PolicyAcceptanceRepository,
	sessionRepo repository.SessionRepository,
	audit *AuditService,
) *ExportService {
	return &ExportService{
		storeRepo:   storeRepo,
		consentRepo: consentRepo,
		policyRepo:  policyRepo,
		sessionRepo: sessionRepo,
		audit:       audit,
	}
}

// ExportUserData assembles and renders the user's data in the requested
// format. Each category is independently toggleable via opts.
func (s *ExportService) ExportUserData(ctx context.Context, userEmail string, opts domain.ExportOptions) (*domain.ExportResult, error) {
	if opts.Format != domain.ExportCSV {
		opts.Format = domain.ExportJSON
	}

	bundle, err := s.collect(ctx, userEmail, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataExport, err)
	}

	var data []byte
	var contentType string
	switch opts.Format {
	case domain.ExportCSV:
		data, err = renderCSV(bundle)
		contentType = "text/csv"
	default:
		data, err = json.MarshalIndent(bundle, "", "  ")
		contentType = "application/json"
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataExport, err)
	}

	s.audit.Log(ctx, userEmail, domain.AuditDataExported, map[string]interface{}{
		"format":           string(opts.Format),
		"include_orders":   opts.IncludeOrders,
		"include_cart":     opts.IncludeCart,
		"include_consents": opts.IncludeConsents,
		"include_sessions": opts.IncludeSessions,
	})

	return &domain.ExportResult{
		Data:        data,
		ContentType: contentType,
		Filename:    exportFilename(userEmail, opts.Format, bundle.ExportedAt),
	}, nil
}

func (s *ExportService) collect(ctx context.Context, userEmail string, opts domain.ExportOptions) (*domain.ExportBundle, error) {
	bundle := &domain.ExportBundle{ExportedAt: time.Now()}

	customer, err := s.storeRepo.GetCustomer(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		// Anonymous shoppers still have consents and sessions to export.
		customer = &domain.Customer{Email: userEmail}
	}
	bundle.PersonalInfo = customer

	if opts.IncludeOrders {
		orders, err := s.storeRepo.GetOrders(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		bundle.Orders = derefOrders(orders)
	}

	if opts.IncludeCart {
		items, err := s.storeRepo.GetCartItems(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			bundle.CartItems = append(bundle.CartItems, *item)
		}
	}

	if opts.IncludeConsents {
		consents, err := s.consentRepo.GetByUserEmail(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		for _, c := range consents {
			bundle.Consents = append(bundle.Consents, *c)
		}

		acceptances, err := s.policyRepo.GetByUserEmail(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		for _, a := range acceptances {
			bundle.PolicyAcceptances = append(bundle.PolicyAcceptances, *a)
		}
	}

	if opts.IncludeSessions {
		sessions, err := s.sessionRepo.GetActiveByUserEmail(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		// Token hashes never leave the sessions table: an export artifact
		// must not carry credential material.
		for _, sess := range sessions {
			bundle.ActiveSessions = append(bundle.ActiveSessions, domain.ExportedSession{
				ID:             sess.ID.String(),
				IPAddress:      sess.IPAddress,
				UserAgent:      sess.UserAgent,
				DeviceLabel:    sess.DeviceLabel,
				CreatedAt:      sess.CreatedAt,
				LastAccessedAt: sess.LastAccessedAt,
				ExpiresAt:      sess.ExpiresAt,
			})
		}
	}

	return bundle, nil
}

func derefOrders(orders []*domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out
}

// exportFilename embeds the subject and a nanosecond timestamp so
// concurrent exports for the same user never collide.
func exportFilename(userEmail string, format domain.ExportFormat, at time.Time) string {
	sanitized := strings.NewReplacer("@", "_at_", ".", "_", "+", "_").Replace(userEmail)
	ext := "json"
	if format == domain.ExportCSV {
		ext = "csv"
	}
	return fmt.Sprintf("dekop-data-export-%s-%s.%s", sanitized, at.UTC().Format("20060102T150405.000000000"), ext)
}

// renderCSV writes a sectioned plain-text rendering: a section header
// line, a column header line, one row per record, and a blank separator.
func renderCSV(bundle *domain.ExportBundle) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	writeSection := func(title string, header []string, rows [][]string) error {
		if err := w.Write([]string{title}); err != nil {
			return err
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString("\n")
		return nil
	}

	info := bundle.PersonalInfo
	if err := writeSection("PERSONAL INFORMATION",
		[]string{"email", "first_name", "last_name", "phone", "address"},
		[][]string{{info.Email, info.FirstName, info.LastName, strDeref(info.Phone), strDeref(info.Address)}},
	); err != nil {
		return nil, err
	}

	if bundle.Orders != nil {
		rows := make([][]string, 0, len(bundle.Orders))
		for _, o := range bundle.Orders {
			rows = append(rows, []string{
				o.ID.String(), o.Status, formatAmount(o.TotalAmount),
				strconv.Itoa(len(o.Items)), o.CreatedAt.Format(time.RFC3339),
			})
		}
		if err := writeSection("ORDERS",
			[]string{"order_id", "status", "total_amount", "item_count", "created_at"}, rows); err != nil {
			return nil, err
		}
	}

	if bundle.CartItems != nil {
		rows := make([][]string, 0, len(bundle.CartItems))
		for _, item := range bundle.CartItems {
			rows = append(rows, []string{item.ProductName, strconv.Itoa(item.Quantity), formatAmount(item.UnitPrice)})
		}
		if err := writeSection("CART",
			[]string{"product_name", "quantity", "unit_price"}, rows); err != nil {
			return nil, err
		}
	}

	if bundle.Consents != nil {
		rows := make([][]string, 0, len(bundle.Consents))
		for _, c := range bundle.Consents {
			rows = append(rows, []string{
				string(c.ConsentType), strconv.FormatBool(c.Granted), c.Version,
				formatTimePtr(c.GrantedAt), formatTimePtr(c.RevokedAt),
			})
		}
		if err := writeSection("CONSENTS",
			[]string{"consent_type", "granted", "version", "granted_at", "revoked_at"}, rows); err != nil {
			return nil, err
		}

		rows = rows[:0]
		for _, a := range bundle.PolicyAcceptances {
			rows = append(rows, []string{a.Version, a.AcceptedAt.Format(time.RFC3339)})
		}
		if err := writeSection("PRIVACY POLICY ACCEPTANCES",
			[]string{"version", "accepted_at"}, rows); err != nil {
			return nil, err
		}
	}

	if bundle.ActiveSessions != nil {
		rows := make([][]string, 0, len(bundle.ActiveSessions))
		for _, sess := range bundle.ActiveSessions {
			rows = append(rows, []string{
				sess.ID, strDeref(sess.IPAddress), strDeref(sess.UserAgent),
				sess.CreatedAt.Format(time.RFC3339), sess.ExpiresAt.Format(time.RFC3339),
			})
		}
		if err := writeSection("ACTIVE SESSIONS",
			[]string{"session_id", "ip_address", "user_agent", "created_at", "expires_at"}, rows); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
