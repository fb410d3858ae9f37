package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeAdapter implements the Stripe gateway and webhook verifier ports
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreatePaymentIntent initiates a charge. Amounts are converted to minor
// units; the currencies in use here are all two-decimal.
func (a *StripeAdapter) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*billing.PaymentIntent, error) {
	a.logger.Debug("Creating Stripe payment intent",
		zap.String("amount", amount.String()),
		zap.String("currency", currency))

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe payment intent",
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	a.logger.Info("Created Stripe payment intent",
		zap.String("payment_intent_id", intent.ID))

	return &billing.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// CreateRefund requests a refund against a payment intent and returns the
// Stripe refund id
func (a *StripeAdapter) CreateRefund(ctx context.Context, paymentIntentID string, amount decimal.Decimal, reason string) (string, error) {
	a.logger.Debug("Creating Stripe refund",
		zap.String("payment_intent_id", paymentIntentID),
		zap.String("amount", amount.String()))

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(toMinorUnits(amount)),
		Metadata: map[string]string{
			"reason": reason,
		},
	}
	params.Context = ctx

	ref, err := refund.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe refund",
			zap.String("payment_intent_id", paymentIntentID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create refund: %w", err)
	}

	a.logger.Info("Created Stripe refund",
		zap.String("payment_intent_id", paymentIntentID),
		zap.String("refund_id", ref.ID))

	return ref.ID, nil
}

// VerifyAndParse verifies a webhook payload against its Stripe-Signature
// header and maps it to the gateway-neutral event shape
func (a *StripeAdapter) VerifyAndParse(payload []byte, signature string) (*billing.WebhookEvent, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, a.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: webhook verification failed: %w", err)
	}

	event := &billing.WebhookEvent{
		ID:         stripeEvent.ID,
		Type:       string(stripeEvent.Type),
		OccurredAt: time.Unix(stripeEvent.Created, 0),
	}

	switch string(stripeEvent.Type) {
	case billing.WebhookPaymentSucceeded, billing.WebhookPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(stripeEvent.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("stripe: failed to parse payment intent event: %w", err)
		}
		event.PaymentIntentID = intent.ID
		event.Amount = fromMinorUnits(intent.Amount)
		event.Currency = string(intent.Currency)
		event.Metadata = intent.Metadata
		if intent.LatestCharge != nil {
			event.ChargeID = intent.LatestCharge.ID
		}
		if intent.LastPaymentError != nil {
			event.FailureMessage = intent.LastPaymentError.Msg
		}

	case billing.WebhookChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(stripeEvent.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("stripe: failed to parse charge event: %w", err)
		}
		event.ChargeID = charge.ID
		event.Currency = string(charge.Currency)
		event.Metadata = charge.Metadata
		if charge.PaymentIntent != nil {
			event.PaymentIntentID = charge.PaymentIntent.ID
		}
		// The newest refund is first in the charge's refund list
		if charge.Refunds != nil && len(charge.Refunds.Data) > 0 {
			latest := charge.Refunds.Data[0]
			event.RefundID = latest.ID
			event.Amount = fromMinorUnits(latest.Amount)
		} else {
			event.Amount = fromMinorUnits(charge.AmountRefunded)
		}
	}

	return event, nil
}

// toMinorUnits converts a decimal amount to cents
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// fromMinorUnits converts cents back to a decimal amount
func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-2)
}

// Ensure StripeAdapter implements the billing ports
var (
	_ billing.StripeGateway   = (*StripeAdapter)(nil)
	_ billing.WebhookVerifier = (*StripeAdapter)(nil)
)
