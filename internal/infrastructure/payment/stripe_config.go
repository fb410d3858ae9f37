package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds Stripe API configuration
type StripeConfig struct {
	// SecretKey is the Stripe API secret key (sk_live_... or sk_test_...)
	SecretKey string

	// WebhookSecret is the signing secret for webhook verification (whsec_...)
	WebhookSecret string
}

// Validate checks the configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe: webhook secret is required")
	}
	return nil
}

// InitStripeClient sets the package-level API key for the Stripe SDK
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
