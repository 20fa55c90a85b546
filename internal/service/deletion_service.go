package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/VadymFES/dekop-compliance/pkg/email"
	"github.com/VadymFES/dekop-compliance/pkg/token"
	"github.com/google/uuid"
)

// Custom errors
var (
	ErrDataDeletion            = errors.New("data deletion failed")
	ErrDeletionScheduling      = errors.New("deletion request scheduling failed")
	ErrDeletionRequestNotFound = errors.New("no open deletion request")
	ErrDeletionRequestExists   = errors.New("a deletion request is already open")
	ErrDeletionVerification    = errors.New("deletion verification token mismatch")
	ErrDeletionRequestDue      = errors.New("deletion request past its scheduled date")
)

// DefaultGracePeriodDays is the mandatory delay between scheduling a
// deletion and executing it.
const DefaultGracePeriodDays = 30

// DeletionService executes right-to-erasure: hard deletion by default,
// anonymization where legal retention applies, always under audit.
type DeletionService struct {
	storeRepo   repository.StoreDataRepository
	sessionRepo repository.SessionRepository
	csrfRepo    repository.CSRFTokenRepository
	consentRepo repository.ConsentRepository
	requestRepo repository.DeletionRequestRepository
	audit       *AuditService
	mailer      email.EmailService
	gracePeriod time.Duration
}

func NewDeletionService(
	storeRepo repository.StoreDataRepository,
	sessionRepo repository.SessionRepository,
	csrfRepo repository.CSRFTokenRepository,
	consentRepo repository.ConsentRepository,
	requestRepo repository.DeletionRequestRepository,
	audit *AuditService,
	mailer email.EmailService,
	gracePeriodDays int,
) *DeletionService {
	if gracePeriodDays <= 0 {
		gracePeriodDays = DefaultGracePeriodDays
	}
	return &DeletionService{
		storeRepo:   storeRepo,
		sessionRepo: sessionRepo,
		csrfRepo:    csrfRepo,
		consentRepo: consentRepo,
		requestRepo: requestRepo,
		audit:       audit,
		mailer:      mailer,
		gracePeriod: time.Duration(gracePeriodDays) * 24 * time.Hour,
	}
}

// DeleteUserData erases a data subject's records. Carts, sessions, and
// CSRF tokens always go; orders are anonymized in place when a retention
// option asks for it, deleted otherwise; consents are revoked but kept
// as the legal trail. The requested/completed/failed audit entries
// bracket the run even when it ends in an error.
func (s *DeletionService) DeleteUserData(ctx context.Context, userEmail string, opts domain.DeletionOptions) (*domain.DeletionReport, error) {
	s.audit.Log(ctx, userEmail, domain.AuditDataDeletionRequested, map[string]interface{}{
		"keep_order_history":          opts.KeepOrderHistory,
		"keep_transaction_records":    opts.KeepTransactionRecords,
		"anonymize_instead_of_delete": opts.AnonymizeInsteadOfDelete,
	})

	report, err := s.erase(ctx, userEmail, opts)
	if err != nil {
		s.audit.Log(ctx, userEmail, domain.AuditDataDeletionFailed, map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrDataDeletion, err)
	}

	s.audit.Log(ctx, userEmail, domain.AuditDataDeletionCompleted, map[string]interface{}{
		"deleted_records":    report.DeletedRecords,
		"anonymized_records": report.AnonymizedRecords,
		"retained_records":   report.RetainedRecords,
	})

	if err := s.mailer.SendDeletionCompletedEmail(ctx, userEmail); err != nil {
		log.Printf("[DELETION] Completion notice for %s not delivered: %v", userEmail, err)
	}

	return report, nil
}

func (s *DeletionService) erase(ctx context.Context, userEmail string, opts domain.DeletionOptions) (*domain.DeletionReport, error) {
	report := domain.NewDeletionReport()

	n, err := s.storeRepo.DeleteCartItems(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	report.DeletedRecords["cart_items"] = int(n)

	n, err = s.storeRepo.DeleteCarts(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	report.DeletedRecords["carts"] = int(n)

	// CSRF tokens reference sessions, so they go first.
	n, err = s.csrfRepo.DeleteByUserEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	report.DeletedRecords["csrf_tokens"] = int(n)

	n, err = s.sessionRepo.DeleteByUserEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	report.DeletedRecords["sessions"] = int(n)

	if opts.KeepOrderHistory || opts.KeepTransactionRecords || opts.AnonymizeInsteadOfDelete {
		anonymousEmail, err := anonymousPlaceholder()
		if err != nil {
			return nil, err
		}
		n, err = s.storeRepo.AnonymizeOrders(ctx, userEmail, anonymousEmail)
		if err != nil {
			return nil, err
		}
		report.AnonymizedRecords["orders"] = int(n)
		report.RetainedRecords["orders"] = int(n)
	} else {
		n, err = s.storeRepo.DeleteOrderItems(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		report.DeletedRecords["order_items"] = int(n)

		n, err = s.storeRepo.DeleteOrders(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		report.DeletedRecords["orders"] = int(n)
	}

	// Consents are revoked, never deleted: the record that consent was
	// once given (and later withdrawn) is itself a legal obligation.
	n, err = s.consentRepo.RevokeAllForUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	report.RetainedRecords["user_consents"] = int(n)

	n, err = s.storeRepo.DeleteCustomer(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	report.DeletedRecords["customers"] = int(n)

	report.Success = true
	return report, nil
}

func anonymousPlaceholder() (string, error) {
	suffix, err := token.Generate(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate anonymous placeholder: %w", err)
	}
	return fmt.Sprintf("deleted-user-%s@anonymized.local", suffix), nil
}

// ScheduleDeletionRequest opens a pending request with a verification
// token and a scheduled date no sooner than the grace period. The raw
// token travels only in the verification email.
func (s *DeletionService) ScheduleDeletionRequest(ctx context.Context, userEmail string) (*domain.DeletionRequest, error) {
	existing, err := s.requestRepo.GetPendingByUserEmail(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}
	if existing != nil {
		return nil, ErrDeletionRequestExists
	}

	verification, err := token.Generate(token.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}

	now := time.Now()
	request := &domain.DeletionRequest{
		ID:                uuid.New(),
		UserEmail:         userEmail,
		VerificationToken: verification,
		ScheduledDate:     now.Add(s.gracePeriod),
		Status:            domain.DeletionPending,
		CreatedAt:         now,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}

	s.audit.Log(ctx, userEmail, domain.AuditDeletionRequestScheduled, map[string]interface{}{
		"request_id":     request.ID,
		"scheduled_date": request.ScheduledDate,
	})

	if err := s.mailer.SendDeletionVerificationEmail(ctx, userEmail, verification, request.ScheduledDate); err != nil {
		log.Printf("[DELETION] Verification email for %s not delivered: %v", userEmail, err)
	}

	return request, nil
}

// ConfirmDeletionRequest moves a pending request to confirmed after
// checking the emailed verification token.
func (s *DeletionService) ConfirmDeletionRequest(ctx context.Context, userEmail, verificationToken string) error {
	request, err := s.requestRepo.GetPendingByUserEmail(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}
	if request == nil {
		return ErrDeletionRequestNotFound
	}

	if subtle.ConstantTimeCompare([]byte(request.VerificationToken), []byte(verificationToken)) != 1 {
		return ErrDeletionVerification
	}

	rows, err := s.requestRepo.UpdateStatus(ctx, request.ID,
		[]domain.DeletionStatus{domain.DeletionPending}, domain.DeletionConfirmed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}
	if rows == 0 {
		return ErrDeletionRequestNotFound
	}

	s.audit.Log(ctx, userEmail, domain.AuditDeletionRequestConfirmed, map[string]interface{}{
		"request_id": request.ID,
	})

	return nil
}

// CancelDeletionRequest aborts an open request. Cancellation is the only
// valid escape from a scheduled deletion, and only before the scheduled
// date.
func (s *DeletionService) CancelDeletionRequest(ctx context.Context, userEmail string) error {
	request, err := s.requestRepo.GetPendingByUserEmail(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}
	if request == nil {
		return ErrDeletionRequestNotFound
	}
	if !time.Now().Before(request.ScheduledDate) {
		return ErrDeletionRequestDue
	}

	rows, err := s.requestRepo.UpdateStatus(ctx, request.ID,
		[]domain.DeletionStatus{domain.DeletionPending, domain.DeletionConfirmed}, domain.DeletionCancelled)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeletionScheduling, err)
	}
	if rows == 0 {
		return ErrDeletionRequestNotFound
	}

	s.audit.Log(ctx, userEmail, domain.AuditDeletionRequestCancelled, map[string]interface{}{
		"request_id": request.ID,
	})

	if err := s.mailer.SendDeletionCancelledEmail(ctx, userEmail); err != nil {
		log.Printf("[DELETION] Cancellation notice for %s not delivered: %v", userEmail, err)
	}

	return nil
}

// ProcessDueRequests executes every confirmed request whose scheduled
// date has passed. Best-effort sweep: a failing request is logged and
// left confirmed for the next run.
func (s *DeletionService) ProcessDueRequests(ctx context.Context) int {
	due, err := s.requestRepo.GetDue(ctx, time.Now())
	if err != nil {
		log.Printf("[DELETION] Due request sweep failed: %v", err)
		return 0
	}

	processed := 0
	for _, request := range due {
		if _, err := s.DeleteUserData(ctx, request.UserEmail, domain.DeletionOptions{KeepOrderHistory: true}); err != nil {
			log.Printf("[DELETION] Scheduled erasure for %s failed: %v", request.UserEmail, err)
			continue
		}

		if _, err := s.requestRepo.UpdateStatus(ctx, request.ID,
			[]domain.DeletionStatus{domain.DeletionConfirmed}, domain.DeletionCompleted); err != nil {
			log.Printf("[DELETION] Failed to mark request %s completed: %v", request.ID, err)
			continue
		}
		processed++
	}

	return processed
}
