package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/google/uuid"
)

type deletionFixture struct {
	svc      *DeletionService
	store    *fakeStoreRepo
	sessions *fakeSessionRepo
	csrf     *fakeCSRFRepo
	consents *fakeConsentRepo
	requests *fakeDeletionRepo
	audit    *fakeAuditRepo
	mailer   *fakeMailer
}

func newDeletionFixture(gracePeriodDays int) *deletionFixture {
	f := &deletionFixture{
		store:    newFakeStoreRepo(),
		sessions: newFakeSessionRepo(),
		csrf:     newFakeCSRFRepo(),
		consents: newFakeConsentRepo(),
		requests: newFakeDeletionRepo(),
		audit:    &fakeAuditRepo{},
		mailer:   &fakeMailer{},
	}
	f.svc = NewDeletionService(
		f.store, f.sessions, f.csrf, f.consents, f.requests,
		NewAuditService(f.audit), f.mailer, gracePeriodDays,
	)
	return f
}

func (f *deletionFixture) seed(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()

	f.store.customers[email] = &domain.Customer{Email: email, FirstName: "Taras", LastName: "Bondar"}
	phone := "+380671112233"
	addr := "12 Soborna St, Lviv"
	f.store.orders = append(f.store.orders, &domain.Order{
		ID:              uuid.New(),
		CustomerEmail:   email,
		CustomerName:    "Taras Bondar",
		Phone:           &phone,
		ShippingAddress: &addr,
		Status:          "delivered",
		TotalAmount:     840.00,
		Items: []domain.OrderItem{
			{ID: uuid.New(), ProductName: "Bookshelf", Quantity: 2, UnitPrice: 420.00},
		},
	})
	f.store.cartItems[email] = []*domain.CartItem{
		{ID: uuid.New(), ProductName: "Floor lamp", Quantity: 1, UnitPrice: 99.00},
	}

	if err := f.consents.Upsert(ctx, &domain.ConsentRecord{
		UserEmail: email, ConsentType: domain.ConsentMarketing, Granted: true, Version: "1.0",
	}); err != nil {
		t.Fatalf("seeding consent failed: %v", err)
	}

	sessionSvc := NewSessionService(f.sessions, f.csrf, nil)
	created, err := sessionSvc.Create(ctx, &email, nil, 3600)
	if err != nil {
		t.Fatalf("seeding session failed: %v", err)
	}
	if _, err := NewCSRFService(f.csrf).Issue(ctx, created.SessionID, 0); err != nil {
		t.Fatalf("seeding csrf token failed: %v", err)
	}
}

func TestDeleteUserDataHardDeletion(t *testing.T) {
	f := newDeletionFixture(0)
	email := "taras@example.com"
	f.seed(t, email)
	ctx := context.Background()

	report, err := f.svc.DeleteUserData(ctx, email, domain.DeletionOptions{})
	if err != nil {
		t.Fatalf("DeleteUserData failed: %v", err)
	}
	if !report.Success {
		t.Error("report not marked successful")
	}

	for table, want := range map[string]int{
		"cart_items":  1,
		"csrf_tokens": 1,
		"sessions":    1,
		"order_items": 1,
		"orders":      1,
		"customers":   1,
	} {
		if got := report.DeletedRecords[table]; got != want {
			t.Errorf("deleted %s = %d, want %d", table, got, want)
		}
	}
	if len(report.AnonymizedRecords) != 0 {
		t.Errorf("hard deletion anonymized %v", report.AnonymizedRecords)
	}
	// Consents are always revoked and retained, never deleted.
	if report.RetainedRecords["user_consents"] != 1 {
		t.Errorf("retained consents = %d, want 1", report.RetainedRecords["user_consents"])
	}

	if _, ok := f.store.customers[email]; ok {
		t.Error("customer row survived hard deletion")
	}
	if len(f.store.orders) != 0 {
		t.Error("orders survived hard deletion")
	}

	actions := f.audit.actions(email)
	if len(actions) != 2 ||
		actions[0] != domain.AuditDataDeletionRequested ||
		actions[1] != domain.AuditDataDeletionCompleted {
		t.Errorf("audit trail = %v, want requested then completed", actions)
	}
	if len(f.mailer.completions) != 1 {
		t.Errorf("completion notices sent = %d, want 1", len(f.mailer.completions))
	}
}

func TestDeleteUserDataAnonymizesRetainedOrders(t *testing.T) {
	f := newDeletionFixture(0)
	email := "taras@example.com"
	f.seed(t, email)
	ctx := context.Background()

	report, err := f.svc.DeleteUserData(ctx, email, domain.DeletionOptions{KeepOrderHistory: true})
	if err != nil {
		t.Fatalf("DeleteUserData failed: %v", err)
	}

	if report.AnonymizedRecords["orders"] != 1 {
		t.Errorf("anonymized orders = %d, want 1", report.AnonymizedRecords["orders"])
	}
	if report.RetainedRecords["orders"] != 1 {
		t.Errorf("retained orders = %d, want 1", report.RetainedRecords["orders"])
	}
	if _, ok := report.DeletedRecords["orders"]; ok {
		t.Error("retained orders also reported as deleted")
	}

	if len(f.store.orders) != 1 {
		t.Fatalf("order rows = %d, want 1 retained", len(f.store.orders))
	}
	order := f.store.orders[0]
	if order.CustomerEmail == email {
		t.Error("retained order still references the subject's email")
	}
	if !strings.HasPrefix(order.CustomerEmail, "deleted-user-") ||
		!strings.HasSuffix(order.CustomerEmail, "@anonymized.local") {
		t.Errorf("placeholder email %q has wrong shape", order.CustomerEmail)
	}
	if order.CustomerName != "[REDACTED]" {
		t.Errorf("customer name %q not redacted", order.CustomerName)
	}
	if order.Phone != nil {
		t.Error("phone survived anonymization")
	}

	// The customer row itself still goes.
	if _, ok := f.store.customers[email]; ok {
		t.Error("customer row survived anonymizing deletion")
	}
}

func TestDeleteUserDataPlaceholdersUnique(t *testing.T) {
	first, err := anonymousPlaceholder()
	if err != nil {
		t.Fatalf("anonymousPlaceholder failed: %v", err)
	}
	second, err := anonymousPlaceholder()
	if err != nil {
		t.Fatalf("anonymousPlaceholder failed: %v", err)
	}
	if first == second {
		t.Errorf("two placeholders collided: %q", first)
	}
}

func TestDeleteUserDataFailureAudited(t *testing.T) {
	f := newDeletionFixture(0)
	email := "taras@example.com"
	f.seed(t, email)
	f.store.fail = true

	_, err := f.svc.DeleteUserData(context.Background(), email, domain.DeletionOptions{})
	if !errors.Is(err, ErrDataDeletion) {
		t.Fatalf("DeleteUserData = %v, want ErrDataDeletion", err)
	}

	actions := f.audit.actions(email)
	if len(actions) != 2 ||
		actions[0] != domain.AuditDataDeletionRequested ||
		actions[1] != domain.AuditDataDeletionFailed {
		t.Errorf("audit trail = %v, want requested then failed", actions)
	}
	if len(f.mailer.completions) != 0 {
		t.Error("completion notice sent for a failed deletion")
	}
}

func TestScheduleDeletionRequest(t *testing.T) {
	f := newDeletionFixture(30)
	ctx := context.Background()
	email := "taras@example.com"

	before := time.Now().Add(30 * 24 * time.Hour)
	request, err := f.svc.ScheduleDeletionRequest(ctx, email)
	if err != nil {
		t.Fatalf("ScheduleDeletionRequest failed: %v", err)
	}
	after := time.Now().Add(30 * 24 * time.Hour)

	if request.Status != domain.DeletionPending {
		t.Errorf("status = %s, want pending", request.Status)
	}
	if request.ScheduledDate.Before(before) || request.ScheduledDate.After(after) {
		t.Errorf("scheduled date %v not 30 days out", request.ScheduledDate)
	}
	if len(f.mailer.verifications) != 1 || f.mailer.verifications[0] != request.VerificationToken {
		t.Error("verification email missing or carries the wrong token")
	}

	// One open request per user.
	if _, err := f.svc.ScheduleDeletionRequest(ctx, email); !errors.Is(err, ErrDeletionRequestExists) {
		t.Errorf("duplicate schedule = %v, want ErrDeletionRequestExists", err)
	}

	actions := f.audit.actions(email)
	if len(actions) != 1 || actions[0] != domain.AuditDeletionRequestScheduled {
		t.Errorf("audit trail = %v, want one deletion_request_scheduled entry", actions)
	}
}

func TestConfirmDeletionRequest(t *testing.T) {
	f := newDeletionFixture(30)
	ctx := context.Background()
	email := "taras@example.com"

	request, err := f.svc.ScheduleDeletionRequest(ctx, email)
	if err != nil {
		t.Fatalf("ScheduleDeletionRequest failed: %v", err)
	}

	wrong := strings.Repeat("0", len(request.VerificationToken))
	if err := f.svc.ConfirmDeletionRequest(ctx, email, wrong); !errors.Is(err, ErrDeletionVerification) {
		t.Fatalf("confirm with wrong token = %v, want ErrDeletionVerification", err)
	}

	if err := f.svc.ConfirmDeletionRequest(ctx, email, request.VerificationToken); err != nil {
		t.Fatalf("ConfirmDeletionRequest failed: %v", err)
	}

	stored, err := f.requests.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.DeletionConfirmed {
		t.Errorf("status = %s, want confirmed", stored.Status)
	}

	if err := f.svc.ConfirmDeletionRequest(ctx, "nobody@example.com", request.VerificationToken); !errors.Is(err, ErrDeletionRequestNotFound) {
		t.Errorf("confirm without request = %v, want ErrDeletionRequestNotFound", err)
	}
}

func TestCancelDeletionRequest(t *testing.T) {
	f := newDeletionFixture(30)
	ctx := context.Background()
	email := "taras@example.com"

	request, err := f.svc.ScheduleDeletionRequest(ctx, email)
	if err != nil {
		t.Fatalf("ScheduleDeletionRequest failed: %v", err)
	}

	if err := f.svc.CancelDeletionRequest(ctx, email); err != nil {
		t.Fatalf("CancelDeletionRequest failed: %v", err)
	}

	stored, err := f.requests.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.DeletionCancelled {
		t.Errorf("status = %s, want cancelled", stored.Status)
	}
	if len(f.mailer.cancellations) != 1 {
		t.Errorf("cancellation notices sent = %d, want 1", len(f.mailer.cancellations))
	}

	// A cancelled request leaves nothing to cancel.
	if err := f.svc.CancelDeletionRequest(ctx, email); !errors.Is(err, ErrDeletionRequestNotFound) {
		t.Errorf("second cancel = %v, want ErrDeletionRequestNotFound", err)
	}
}

func TestCancelDeletionRequestPastDue(t *testing.T) {
	f := newDeletionFixture(30)
	ctx := context.Background()
	email := "taras@example.com"

	request, err := f.svc.ScheduleDeletionRequest(ctx, email)
	if err != nil {
		t.Fatalf("ScheduleDeletionRequest failed: %v", err)
	}

	f.requests.mu.Lock()
	f.requests.requests[request.ID].ScheduledDate = time.Now().Add(-time.Hour)
	f.requests.mu.Unlock()

	if err := f.svc.CancelDeletionRequest(ctx, email); !errors.Is(err, ErrDeletionRequestDue) {
		t.Fatalf("cancel past scheduled date = %v, want ErrDeletionRequestDue", err)
	}
}

func TestProcessDueRequests(t *testing.T) {
	f := newDeletionFixture(30)
	ctx := context.Background()
	email := "taras@example.com"
	f.seed(t, email)

	request, err := f.svc.ScheduleDeletionRequest(ctx, email)
	if err != nil {
		t.Fatalf("ScheduleDeletionRequest failed: %v", err)
	}
	if err := f.svc.ConfirmDeletionRequest(ctx, email, request.VerificationToken); err != nil {
		t.Fatalf("ConfirmDeletionRequest failed: %v", err)
	}

	// Nothing due yet; the sweep is a no-op.
	if n := f.svc.ProcessDueRequests(ctx); n != 0 {
		t.Errorf("premature sweep processed %d requests, want 0", n)
	}

	f.requests.mu.Lock()
	f.requests.requests[request.ID].ScheduledDate = time.Now().Add(-time.Minute)
	f.requests.mu.Unlock()

	if n := f.svc.ProcessDueRequests(ctx); n != 1 {
		t.Fatalf("sweep processed %d requests, want 1", n)
	}

	stored, err := f.requests.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.DeletionCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if _, ok := f.store.customers[email]; ok {
		t.Error("customer row survived the scheduled erasure")
	}
	// Scheduled erasure keeps orders in anonymized form.
	if len(f.store.orders) != 1 {
		t.Errorf("order rows = %d, want 1 anonymized", len(f.store.orders))
	}

	// An executed request does not run twice.
	if n := f.svc.ProcessDueRequests(ctx); n != 0 {
		t.Errorf("repeat sweep processed %d requests, want 0", n)
	}
}

func TestProcessDueRequestsLeavesFailedConfirmed(t *testing.T) {
	f := newDeletionFixture(30)
	ctx := context.Background()
	email := "taras@example.com"
	f.seed(t, email)

	request, err := f.svc.ScheduleDeletionRequest(ctx, email)
	if err != nil {
		t.Fatalf("ScheduleDeletionRequest failed: %v", err)
	}
	if err := f.svc.ConfirmDeletionRequest(ctx, email, request.VerificationToken); err != nil {
		t.Fatalf("ConfirmDeletionRequest failed: %v", err)
	}

	f.requests.mu.Lock()
	f.requests.requests[request.ID].ScheduledDate = time.Now().Add(-time.Minute)
	f.requests.mu.Unlock()

	f.store.fail = true
	if n := f.svc.ProcessDueRequests(ctx); n != 0 {
		t.Errorf("failing sweep processed %d requests, want 0", n)
	}

	stored, err := f.requests.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.DeletionConfirmed {
		t.Errorf("status = %s, want confirmed for a retry", stored.Status)
	}

	// The next sweep retries and succeeds.
	f.store.fail = false
	if n := f.svc.ProcessDueRequests(ctx); n != 1 {
		t.Errorf("retry sweep processed %d requests, want 1", n)
	}
}
