package notification

import (
	"context"
	"fmt"

	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EmailSender is the port to the transactional email provider
type EmailSender interface {
	// SendTransactional sends a templated transactional email. Data
	// variables are substituted into the template by the provider.
	SendTransactional(ctx context.Context, templateID, email string, dataVariables map[string]interface{}) error
}

// TemplateConfig maps notification kinds to provider template ids
type TemplateConfig struct {
	RegistrationPaid string
	PaymentFailed    string
	RefundIssued     string
	SyncAlert        string

	// SyncAlertRecipient is the operator address for staging sync alerts
	SyncAlertRecipient string
}

// EmailNotificationHandler sends transactional emails off domain events.
// Email failures are logged, never propagated, so a provider outage cannot
// poison event processing.
type EmailNotificationHandler struct {
	sender     EmailSender
	memberRepo membership.MemberRepository
	templates  TemplateConfig
	logger     *zap.Logger
}

// NewEmailNotificationHandler creates a new email notification handler
func NewEmailNotificationHandler(
	sender EmailSender,
	memberRepo membership.MemberRepository,
	templates TemplateConfig,
	logger *zap.Logger,
) *EmailNotificationHandler {
	return &EmailNotificationHandler{
		sender:     sender,
		memberRepo: memberRepo,
		templates:  templates,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *EmailNotificationHandler) EventTypes() []string {
	return []string{
		"RegistrationPaid",
		"PaymentFailed",
		"RefundCompleted",
		"StagingSyncExhausted",
	}
}

// Handle dispatches an event to the matching notification
func (h *EmailNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var err error
	switch e := event.(type) {
	case *membership.RegistrationPaidEvent:
		err = h.notifyRegistrationPaid(ctx, e)
	case *billing.PaymentFailedEvent:
		err = h.notifyPaymentFailed(ctx, e)
	case *billing.RefundCompletedEvent:
		err = h.notifyRefundIssued(ctx, e)
	case *accounting.StagingSyncExhaustedEvent:
		err = h.alertSyncExhausted(ctx, e)
	default:
		return nil
	}

	if err != nil {
		h.logger.Error("failed to send notification email",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
	}
	return nil
}

func (h *EmailNotificationHandler) notifyRegistrationPaid(ctx context.Context, event *membership.RegistrationPaidEvent) error {
	if h.templates.RegistrationPaid == "" {
		return nil
	}
	member, err := h.memberRepo.FindByID(ctx, event.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	return h.sender.SendTransactional(ctx, h.templates.RegistrationPaid, member.Email, map[string]interface{}{
		"firstName": member.FirstName,
		"reference": event.Reference,
		"amount":    event.Amount.StringFixed(2),
		"currency":  event.Currency,
		"paidAt":    event.PaidAt.Format("2 January 2006"),
	})
}

func (h *EmailNotificationHandler) notifyPaymentFailed(ctx context.Context, event *billing.PaymentFailedEvent) error {
	if h.templates.PaymentFailed == "" {
		return nil
	}
	member, err := h.memberRepo.FindByID(ctx, event.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	return h.sender.SendTransactional(ctx, h.templates.PaymentFailed, member.Email, map[string]interface{}{
		"firstName": member.FirstName,
		"amount":    event.Amount.StringFixed(2),
		"currency":  event.Currency,
		"reason":    event.FailureReason,
	})
}

func (h *EmailNotificationHandler) notifyRefundIssued(ctx context.Context, event *billing.RefundCompletedEvent) error {
	if h.templates.RefundIssued == "" {
		return nil
	}
	member, err := h.memberRepo.FindByID(ctx, event.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	return h.sender.SendTransactional(ctx, h.templates.RefundIssued, member.Email, map[string]interface{}{
		"firstName": member.FirstName,
		"amount":    event.Amount.StringFixed(2),
		"currency":  event.Currency,
		"reason":    event.Reason,
	})
}

// alertSyncExhausted tells an operator a staging row ran out of retries
// and needs a manual retry or ignore
func (h *EmailNotificationHandler) alertSyncExhausted(ctx context.Context, event *accounting.StagingSyncExhaustedEvent) error {
	if h.templates.SyncAlert == "" || h.templates.SyncAlertRecipient == "" {
		return nil
	}
	return h.sender.SendTransactional(ctx, h.templates.SyncAlert, h.templates.SyncAlertRecipient, map[string]interface{}{
		"recordType":     string(event.RecordType),
		"rowId":          event.AggregateID().String(),
		"idempotencyKey": event.IdempotencyKey,
		"syncError":      event.SyncError,
		"retryCount":     event.RetryCount,
	})
}

// Ensure EmailNotificationHandler implements EventHandler
var _ shared.EventHandler = (*EmailNotificationHandler)(nil)
