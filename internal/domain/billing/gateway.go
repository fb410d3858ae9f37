package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent is the gateway-side handle for an initiated charge
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// StripeGateway is the port to the Stripe API. Amounts cross the boundary
// as decimals; implementations convert to minor units.
type StripeGateway interface {
	// CreatePaymentIntent initiates a charge. Metadata keys are echoed back
	// on webhook events and carry the correlation ids (registration_id,
	// member_id, installment_id for plan charges).
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentIntent, error)

	// CreateRefund requests a refund against a payment intent and returns
	// the Stripe refund id.
	CreateRefund(ctx context.Context, paymentIntentID string, amount decimal.Decimal, reason string) (string, error)
}

// Webhook event types processed by the webhook service
const (
	WebhookPaymentSucceeded = "payment_intent.succeeded"
	WebhookPaymentFailed    = "payment_intent.payment_failed"
	WebhookChargeRefunded   = "charge.refunded"
)

// WebhookEvent is the verified, gateway-neutral view of a Stripe webhook
// event. The verifier populates only the fields the event type carries.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	ChargeID        string
	RefundID        string
	Amount          decimal.Decimal
	Currency        string
	FailureMessage  string
	Metadata        map[string]string
	OccurredAt      time.Time
}

// WebhookVerifier verifies a raw webhook payload against its signature
// header and parses it into a WebhookEvent
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, signature string) (*WebhookEvent, error)
}
