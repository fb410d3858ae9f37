package accounting

import (
	"fmt"
	"time"
)

// XeroConfig holds Xero API configuration. Authentication uses the OAuth2
// refresh-token flow for a single organisation connection.
type XeroConfig struct {
	// ClientID and ClientSecret identify the Xero app
	ClientID     string
	ClientSecret string

	// RefreshToken is the long-lived token minted when the organisation
	// connection was authorised
	RefreshToken string

	// TenantID is the Xero organisation (connection) id sent on every call
	TenantID string

	// BaseURL is the API host, overridable for tests
	BaseURL string

	// TokenURL is the OAuth2 token endpoint, overridable for tests
	TokenURL string

	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// Validate checks the configuration
func (c *XeroConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("xero: client id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("xero: client secret is required")
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("xero: refresh token is required")
	}
	if c.TenantID == "" {
		return fmt.Errorf("xero: tenant id is required")
	}
	return nil
}

func (c *XeroConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.xero.com"
	}
	if c.TokenURL == "" {
		c.TokenURL = "https://identity.xero.com/connect/token"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}
