package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StagingWriter subscribes to billing and membership events and inserts
// the staging rows the batch sync drains toward Xero. Every insert is
// guarded by the row's deterministic idempotency key, so replayed events
// never produce duplicate rows.
type StagingWriter struct {
	invoiceRepo      accounting.InvoiceStagingRepository
	paymentRepo      accounting.PaymentStagingRepository
	memberRepo       membership.MemberRepository
	registrationRepo membership.RegistrationRepository
	bankAccountCode  string
	logger           *zap.Logger
}

// NewStagingWriter creates a new staging writer
func NewStagingWriter(
	invoiceRepo accounting.InvoiceStagingRepository,
	paymentRepo accounting.PaymentStagingRepository,
	memberRepo membership.MemberRepository,
	registrationRepo membership.RegistrationRepository,
	bankAccountCode string,
	logger *zap.Logger,
) *StagingWriter {
	return &StagingWriter{
		invoiceRepo:      invoiceRepo,
		paymentRepo:      paymentRepo,
		memberRepo:       memberRepo,
		registrationRepo: registrationRepo,
		bankAccountCode:  bankAccountCode,
		logger:           logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (w *StagingWriter) EventTypes() []string {
	return []string{
		"RegistrationPaid",
		"RefundCompleted",
		"PaymentPlanCreated",
		"InstallmentPaid",
	}
}

// Handle dispatches an event to the matching staging insert
func (w *StagingWriter) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *membership.RegistrationPaidEvent:
		return w.handleRegistrationPaid(ctx, e)
	case *billing.RefundCompletedEvent:
		return w.handleRefundCompleted(ctx, e)
	case *billing.PaymentPlanCreatedEvent:
		return w.handlePaymentPlanCreated(ctx, e)
	case *billing.InstallmentPaidEvent:
		return w.handleInstallmentPaid(ctx, e)
	default:
		w.logger.Warn("staging writer received unexpected event",
			zap.String("event_type", event.EventType()))
		return nil
	}
}

// handleRegistrationPaid stages the registration invoice and, for upfront
// payments, the matching payment row. Plan registrations reach paid on the
// last installment; their invoice and payment rows were already staged.
func (w *StagingWriter) handleRegistrationPaid(ctx context.Context, event *membership.RegistrationPaidEvent) error {
	registrationID := event.AggregateID()

	invoiceRow, err := w.ensureInvoiceRow(ctx, invoiceRowSpec{
		kind:           accounting.InvoiceKindInvoice,
		registrationID: registrationID,
		memberID:       event.MemberID,
		reference:      event.Reference,
		description:    fmt.Sprintf("Season registration %s", event.Reference),
		accountCode:    event.AccountCode,
		amount:         event.Amount,
		currency:       event.Currency,
		invoiceDate:    event.PaidAt,
		dueDate:        event.PaidAt,
		idempotencyKey: accounting.InvoiceIdempotencyKey(registrationID),
		metadata: accounting.StagingMetadata{
			RegistrationID: &registrationID,
			MemberID:       &event.MemberID,
			PaymentID:      &event.PaymentID,
			SeasonID:       &event.SeasonID,
			SourceEvent:    event.EventType(),
		},
	})
	if err != nil {
		return err
	}

	if event.OnPlan {
		// Installment payment rows are staged from plan events
		return nil
	}

	paymentKey := accounting.PaymentIdempotencyKey(event.PaymentID)
	exists, err := w.paymentRepo.ExistsByIdempotencyKey(ctx, paymentKey)
	if err != nil {
		return fmt.Errorf("failed to check payment staging row: %w", err)
	}
	if exists {
		return nil
	}

	row, err := accounting.NewPaymentStaging(
		invoiceRow.ID,
		event.PaymentID,
		registrationID,
		event.MemberID,
		event.Amount,
		event.Currency,
		w.bankAccountCode,
		event.PaidAt,
		paymentKey,
		accounting.StagingMetadata{
			RegistrationID: &registrationID,
			MemberID:       &event.MemberID,
			PaymentID:      &event.PaymentID,
			SourceEvent:    event.EventType(),
		},
	)
	if err != nil {
		return err
	}
	if err := w.paymentRepo.Save(ctx, row); err != nil {
		return fmt.Errorf("failed to save payment staging row: %w", err)
	}

	w.logger.Info("staged invoice and payment for registration",
		zap.String("registration_id", registrationID.String()),
		zap.String("reference", event.Reference))
	return nil
}

// handleRefundCompleted stages a credit note for the refunded amount
func (w *StagingWriter) handleRefundCompleted(ctx context.Context, event *billing.RefundCompletedEvent) error {
	refundID := event.AggregateID()

	key := accounting.CreditNoteIdempotencyKey(refundID)
	exists, err := w.invoiceRepo.ExistsByIdempotencyKey(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check credit note staging row: %w", err)
	}
	if exists {
		return nil
	}

	member, err := w.memberRepo.FindByID(ctx, event.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load member for credit note: %w", err)
	}
	registration, err := w.registrationRepo.FindByID(ctx, event.RegistrationID)
	if err != nil {
		return fmt.Errorf("failed to load registration for credit note: %w", err)
	}

	row, err := accounting.NewInvoiceStaging(
		accounting.InvoiceKindCreditNote,
		event.RegistrationID,
		event.MemberID,
		member.FullName(),
		member.Email,
		fmt.Sprintf("CN-%s", registration.Reference),
		fmt.Sprintf("Refund: %s", event.Reason),
		registration.AccountCode,
		event.Amount,
		event.Currency,
		event.CompletedAt,
		event.CompletedAt,
		key,
		accounting.StagingMetadata{
			RegistrationID: &event.RegistrationID,
			MemberID:       &event.MemberID,
			PaymentID:      &event.PaymentID,
			RefundID:       &refundID,
			StripeRefundID: event.StripeRefundID,
			SourceEvent:    event.EventType(),
		},
	)
	if err != nil {
		return err
	}
	if err := w.invoiceRepo.Save(ctx, row); err != nil {
		return fmt.Errorf("failed to save credit note staging row: %w", err)
	}

	w.logger.Info("staged credit note for refund",
		zap.String("refund_id", refundID.String()),
		zap.String("amount", event.Amount.String()))
	return nil
}

// handlePaymentPlanCreated stages the full-fee invoice up front plus one
// planned payment row per installment. Planned rows carry the installment
// id until the charge settles and InstallmentPaid promotes them.
func (w *StagingWriter) handlePaymentPlanCreated(ctx context.Context, event *billing.PaymentPlanCreatedEvent) error {
	member, err := w.memberRepo.FindByID(ctx, event.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load member for plan invoice: %w", err)
	}
	registration, err := w.registrationRepo.FindByID(ctx, event.RegistrationID)
	if err != nil {
		return fmt.Errorf("failed to load registration for plan invoice: %w", err)
	}

	lastDue := event.OccurredAt()
	for _, inst := range event.Installments {
		if inst.DueDate.After(lastDue) {
			lastDue = inst.DueDate
		}
	}

	invoiceRow, err := w.ensureInvoiceRowWithContact(ctx, invoiceRowSpec{
		kind:           accounting.InvoiceKindInvoice,
		registrationID: event.RegistrationID,
		memberID:       event.MemberID,
		reference:      registration.Reference,
		description:    fmt.Sprintf("Season registration %s (payment plan, %d installments)", registration.Reference, len(event.Installments)),
		accountCode:    registration.AccountCode,
		amount:         event.TotalAmount,
		currency:       event.Currency,
		invoiceDate:    event.OccurredAt(),
		dueDate:        lastDue,
		idempotencyKey: accounting.InvoiceIdempotencyKey(event.RegistrationID),
		metadata: accounting.StagingMetadata{
			RegistrationID: &event.RegistrationID,
			MemberID:       &event.MemberID,
			SourceEvent:    event.EventType(),
		},
	}, member)
	if err != nil {
		return err
	}

	for _, inst := range event.Installments {
		key := accounting.InstallmentIdempotencyKey(inst.InstallmentID)
		exists, err := w.paymentRepo.ExistsByIdempotencyKey(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check planned staging row: %w", err)
		}
		if exists {
			continue
		}

		installmentID := inst.InstallmentID
		// The billing payment does not exist yet for a planned row, so the
		// installment id stands in as the correlation id until promotion
		row, err := accounting.NewPlannedPaymentStaging(
			invoiceRow.ID,
			inst.InstallmentID,
			event.RegistrationID,
			event.MemberID,
			inst.Amount,
			event.Currency,
			w.bankAccountCode,
			inst.DueDate,
			key,
			accounting.StagingMetadata{
				RegistrationID: &event.RegistrationID,
				MemberID:       &event.MemberID,
				InstallmentID:  &installmentID,
				SourceEvent:    event.EventType(),
			},
		)
		if err != nil {
			return err
		}
		if err := w.paymentRepo.Save(ctx, row); err != nil {
			return fmt.Errorf("failed to save planned staging row: %w", err)
		}
	}

	w.logger.Info("staged plan invoice and planned payment rows",
		zap.String("registration_id", event.RegistrationID.String()),
		zap.Int("installments", len(event.Installments)))
	return nil
}

// handleInstallmentPaid promotes the planned row for a settled installment
// to pending and records the real payment id on it
func (w *StagingWriter) handleInstallmentPaid(ctx context.Context, event *billing.InstallmentPaidEvent) error {
	key := accounting.InstallmentIdempotencyKey(event.InstallmentID)
	row, err := w.paymentRepo.FindByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			w.logger.Warn("no planned staging row for settled installment",
				zap.String("installment_id", event.InstallmentID.String()))
			return nil
		}
		return err
	}

	if !row.IsPlanned() {
		// Replayed event, the row was already promoted
		return nil
	}

	if err := row.Promote(event.PaidAt); err != nil {
		return err
	}
	row.PaymentID = event.PaymentID
	row.Metadata.PaymentID = &event.PaymentID

	if err := w.paymentRepo.Save(ctx, row); err != nil {
		return fmt.Errorf("failed to save promoted staging row: %w", err)
	}

	w.logger.Info("promoted planned staging row",
		zap.String("installment_id", event.InstallmentID.String()),
		zap.String("payment_id", event.PaymentID.String()))
	return nil
}

type invoiceRowSpec struct {
	kind           accounting.InvoiceKind
	registrationID uuid.UUID
	memberID       uuid.UUID
	reference      string
	description    string
	accountCode    string
	amount         decimal.Decimal
	currency       string
	invoiceDate    time.Time
	dueDate        time.Time
	idempotencyKey string
	metadata       accounting.StagingMetadata
}

func (w *StagingWriter) ensureInvoiceRow(ctx context.Context, spec invoiceRowSpec) (*accounting.InvoiceStaging, error) {
	member, err := w.memberRepo.FindByID(ctx, spec.memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member for invoice: %w", err)
	}
	return w.ensureInvoiceRowWithContact(ctx, spec, member)
}

func (w *StagingWriter) ensureInvoiceRowWithContact(ctx context.Context, spec invoiceRowSpec, member *membership.Member) (*accounting.InvoiceStaging, error) {
	existing, err := w.invoiceRepo.FindByIdempotencyKey(ctx, spec.idempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check invoice staging row: %w", err)
	}

	row, err := accounting.NewInvoiceStaging(
		spec.kind,
		spec.registrationID,
		spec.memberID,
		member.FullName(),
		member.Email,
		spec.reference,
		spec.description,
		spec.accountCode,
		spec.amount,
		spec.currency,
		spec.invoiceDate,
		spec.dueDate,
		spec.idempotencyKey,
		spec.metadata,
	)
	if err != nil {
		return nil, err
	}
	if err := w.invoiceRepo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save invoice staging row: %w", err)
	}
	return row, nil
}

// Ensure StagingWriter implements EventHandler
var _ shared.EventHandler = (*StagingWriter)(nil)
