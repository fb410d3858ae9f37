package event

import (
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// RegisterAllEvents binds every outbox-carried event type to its
// concrete struct so the processor can replay stored payloads.
func RegisterAllEvents(s *EventSerializer) {
	register := s.Register

	register("MemberCreated", func() shared.DomainEvent { return &membership.MemberCreatedEvent{} })
	register("RegistrationCreated", func() shared.DomainEvent { return &membership.RegistrationCreatedEvent{} })
	register("RegistrationSubmitted", func() shared.DomainEvent { return &membership.RegistrationSubmittedEvent{} })
	register("RegistrationPaid", func() shared.DomainEvent { return &membership.RegistrationPaidEvent{} })
	register("RegistrationCancelled", func() shared.DomainEvent { return &membership.RegistrationCancelledEvent{} })

	register("PaymentSucceeded", func() shared.DomainEvent { return &billing.PaymentSucceededEvent{} })
	register("PaymentFailed", func() shared.DomainEvent { return &billing.PaymentFailedEvent{} })
	register("RefundCompleted", func() shared.DomainEvent { return &billing.RefundCompletedEvent{} })
	register("PaymentPlanCreated", func() shared.DomainEvent { return &billing.PaymentPlanCreatedEvent{} })
	register("InstallmentPaid", func() shared.DomainEvent { return &billing.InstallmentPaidEvent{} })
	register("PaymentPlanCompleted", func() shared.DomainEvent { return &billing.PaymentPlanCompletedEvent{} })

	register("InvoiceStagingCreated", func() shared.DomainEvent { return &accounting.InvoiceStagingCreatedEvent{} })
	register("PaymentStagingCreated", func() shared.DomainEvent { return &accounting.PaymentStagingCreatedEvent{} })
	register("StagingSyncExhausted", func() shared.DomainEvent { return &accounting.StagingSyncExhaustedEvent{} })
}
