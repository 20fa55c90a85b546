package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/google/uuid"
)

// In-memory repository fakes. Each can be switched into a failing mode
// to exercise the storage-fault policies.

var errStorage = errors.New("storage unavailable")

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
	fail     bool
	lookups  int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetActiveByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.fail {
		return nil, errStorage
	}
	for _, s := range r.sessions {
		if s.TokenHash == tokenHash && s.Active(time.Now()) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) GetActiveByUserEmail(ctx context.Context, email string) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.Session
	for _, s := range r.sessions {
		if s.UserEmail != nil && *s.UserEmail == email && s.Active(time.Now()) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Touch(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	if s, ok := r.sessions[id]; ok {
		s.LastAccessedAt = time.Now()
	}
	return nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	if s, ok := r.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (r *fakeSessionRepo) Extend(ctx context.Context, id uuid.UUID, ttlSeconds int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	s, ok := r.sessions[id]
	if !ok || s.Revoked {
		return 0, nil
	}
	s.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	return 1, nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	now := time.Now()
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) DeleteByUserEmail(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	for id, s := range r.sessions {
		if s.UserEmail != nil && *s.UserEmail == email {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeCSRFRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.CSRFToken
	fail   bool
}

func newFakeCSRFRepo() *fakeCSRFRepo {
	return &fakeCSRFRepo{tokens: make(map[string]*domain.CSRFToken)}
}

func (r *fakeCSRFRepo) Create(ctx context.Context, t *domain.CSRFToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	cp := *t
	r.tokens[t.Token] = &cp
	return nil
}

func (r *fakeCSRFRepo) Consume(ctx context.Context, tok string, sessionID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return false, errStorage
	}
	t, ok := r.tokens[tok]
	if !ok || t.Used || t.SessionID != sessionID || !t.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	t.Used = true
	return true, nil
}

func (r *fakeCSRFRepo) DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	for k, t := range r.tokens {
		if t.SessionID == sessionID {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeCSRFRepo) DeleteByUserEmail(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	// Session ownership is not modelled here; the erasure tests only
	// assert that the call happens and the count flows into the report.
	n := int64(len(r.tokens))
	r.tokens = make(map[string]*domain.CSRFToken)
	return n, nil
}

func (r *fakeCSRFRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	now := time.Now()
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeConsentRepo struct {
	mu      sync.Mutex
	records map[string]map[domain.ConsentType]*domain.ConsentRecord
	fail    bool
}

func newFakeConsentRepo() *fakeConsentRepo {
	return &fakeConsentRepo{records: make(map[string]map[domain.ConsentType]*domain.ConsentRecord)}
}

func (r *fakeConsentRepo) Upsert(ctx context.Context, rec *domain.ConsentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	byType, ok := r.records[rec.UserEmail]
	if !ok {
		byType = make(map[domain.ConsentType]*domain.ConsentRecord)
		r.records[rec.UserEmail] = byType
	}
	cp := *rec
	if prev, ok := byType[rec.ConsentType]; ok && cp.GrantedAt == nil {
		cp.GrantedAt = prev.GrantedAt
	}
	byType[rec.ConsentType] = &cp
	return nil
}

func (r *fakeConsentRepo) GetByUserEmail(ctx context.Context, email string) ([]*domain.ConsentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.ConsentRecord
	for _, rec := range r.records[email] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeConsentRepo) RevokeAllForUser(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	now := time.Now()
	for _, rec := range r.records[email] {
		if rec.Granted {
			rec.Granted = false
			rec.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

type fakePolicyRepo struct {
	mu          sync.Mutex
	acceptances []*domain.PolicyAcceptance
	fail        bool
}

func (r *fakePolicyRepo) Create(ctx context.Context, a *domain.PolicyAcceptance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	cp := *a
	r.acceptances = append(r.acceptances, &cp)
	return nil
}

func (r *fakePolicyRepo) GetLatestByUserEmail(ctx context.Context, email string) (*domain.PolicyAcceptance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var latest *domain.PolicyAcceptance
	for _, a := range r.acceptances {
		if a.UserEmail != email {
			continue
		}
		if latest == nil || a.AcceptedAt.After(latest.AcceptedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakePolicyRepo) GetByUserEmail(ctx context.Context, email string) ([]*domain.PolicyAcceptance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.PolicyAcceptance
	for _, a := range r.acceptances {
		if a.UserEmail == email {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeDeletionRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.DeletionRequest
	fail     bool
}

func newFakeDeletionRepo() *fakeDeletionRepo {
	return &fakeDeletionRepo{requests: make(map[uuid.UUID]*domain.DeletionRequest)}
}

func (r *fakeDeletionRepo) Create(ctx context.Context, req *domain.DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeDeletionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeDeletionRepo) GetPendingByUserEmail(ctx context.Context, email string) (*domain.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	for _, req := range r.requests {
		if req.UserEmail == email && (req.Status == domain.DeletionPending || req.Status == domain.DeletionConfirmed) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDeletionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from []domain.DeletionStatus, to domain.DeletionStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	req, ok := r.requests[id]
	if !ok {
		return 0, nil
	}
	for _, s := range from {
		if req.Status == s {
			req.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeDeletionRepo) GetDue(ctx context.Context, now time.Time) ([]*domain.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.DeletionRequest
	for _, req := range r.requests {
		if req.Status == domain.DeletionConfirmed && !req.ScheduledDate.After(now) {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
	fail    bool
}

func (r *fakeAuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStorage
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) GetByUserEmail(ctx context.Context, email string, limit int) ([]*domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.AuditEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserEmail == email {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions(email string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.UserEmail == email {
			out = append(out, e.Action)
		}
	}
	return out
}

type fakeStoreRepo struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
	orders    []*domain.Order
	cartItems map[string][]*domain.CartItem
	fail      bool
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{
		customers: make(map[string]*domain.Customer),
		cartItems: make(map[string][]*domain.CartItem),
	}
}

func (r *fakeStoreRepo) GetCustomer(ctx context.Context, email string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	c, ok := r.customers[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeStoreRepo) GetOrders(ctx context.Context, email string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.Order
	for _, o := range r.orders {
		if o.CustomerEmail == email {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStoreRepo) GetCartItems(ctx context.Context, email string) ([]*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStorage
	}
	var out []*domain.CartItem
	for _, item := range r.cartItems[email] {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeStoreRepo) DeleteCustomer(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	if _, ok := r.customers[email]; !ok {
		return 0, nil
	}
	delete(r.customers, email)
	return 1, nil
}

func (r *fakeStoreRepo) DeleteCartItems(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	n := int64(len(r.cartItems[email]))
	delete(r.cartItems, email)
	return n, nil
}

func (r *fakeStoreRepo) DeleteCarts(ctx context.Context, email string) (int64, error) {
	if r.fail {
		return 0, errStorage
	}
	return 1, nil
}

func (r *fakeStoreRepo) DeleteOrderItems(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	for _, o := range r.orders {
		if o.CustomerEmail == email {
			n += int64(len(o.Items))
			o.Items = nil
		}
	}
	return n, nil
}

func (r *fakeStoreRepo) DeleteOrders(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var kept []*domain.Order
	var n int64
	for _, o := range r.orders {
		if o.CustomerEmail == email {
			n++
			continue
		}
		kept = append(kept, o)
	}
	r.orders = kept
	return n, nil
}

func (r *fakeStoreRepo) AnonymizeOrders(ctx context.Context, email, anonymousEmail string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStorage
	}
	var n int64
	for _, o := range r.orders {
		if o.CustomerEmail == email {
			o.CustomerEmail = anonymousEmail
			o.CustomerName = "[REDACTED]"
			o.Phone = nil
			redacted := "[REDACTED]"
			o.ShippingAddress = &redacted
			n++
		}
	}
	return n, nil
}

type fakeMailer struct {
	mu            sync.Mutex
	verifications []string
	cancellations []string
	completions   []string
}

func (m *fakeMailer) SendDeletionVerificationEmail(ctx context.Context, to, token string, scheduledDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, token)
	return nil
}

func (m *fakeMailer) SendDeletionCancelledEmail(ctx context.Context, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations = append(m.cancellations, to)
	return nil
}

func (m *fakeMailer) SendDeletionCompletedEmail(ctx context.Context, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, to)
	return nil
}
