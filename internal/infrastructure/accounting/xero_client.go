package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rinkpass/backend/internal/domain/accounting"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// XeroClient implements the Xero gateway port over the Xero REST API.
// Every write carries the staging row's idempotency key in the
// Idempotency-Key header, so a row retried after a timeout cannot create a
// second document in Xero.
type XeroClient struct {
	config     *XeroConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewXeroClient creates a Xero API client. The OAuth2 token source refreshes
// the access token transparently and rotates the refresh token in memory.
func NewXeroClient(config *XeroConfig, logger *zap.Logger) (*XeroClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: config.TokenURL,
		},
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Timeout: config.Timeout,
	})
	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: config.RefreshToken,
	})

	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Timeout = config.Timeout

	return &XeroClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// NewXeroClientWithHTTPClient wraps a pre-authenticated HTTP client. Useful
// for tests.
func NewXeroClientWithHTTPClient(config *XeroConfig, httpClient *http.Client, logger *zap.Logger) *XeroClient {
	config.applyDefaults()
	return &XeroClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

type xeroContact struct {
	Name         string `json:"Name"`
	EmailAddress string `json:"EmailAddress,omitempty"`
}

type xeroLineItem struct {
	Description string      `json:"Description"`
	Quantity    int         `json:"Quantity"`
	UnitAmount  json.Number `json:"UnitAmount"`
	AccountCode string      `json:"AccountCode"`
}

type xeroInvoice struct {
	Type            string         `json:"Type"`
	Contact         xeroContact    `json:"Contact"`
	InvoiceNumber   string         `json:"InvoiceNumber,omitempty"`
	Reference       string         `json:"Reference,omitempty"`
	Date            string         `json:"Date"`
	DueDate         string         `json:"DueDate,omitempty"`
	Status          string         `json:"Status"`
	LineAmountTypes string         `json:"LineAmountTypes"`
	CurrencyCode    string         `json:"CurrencyCode"`
	LineItems       []xeroLineItem `json:"LineItems"`
}

type xeroCreditNote struct {
	Type             string         `json:"Type"`
	Contact          xeroContact    `json:"Contact"`
	CreditNoteNumber string         `json:"CreditNoteNumber,omitempty"`
	Date             string         `json:"Date"`
	Status           string         `json:"Status"`
	LineAmountTypes  string         `json:"LineAmountTypes"`
	CurrencyCode     string         `json:"CurrencyCode"`
	LineItems        []xeroLineItem `json:"LineItems"`
}

type xeroPayment struct {
	Invoice struct {
		InvoiceID string `json:"InvoiceID"`
	} `json:"Invoice"`
	Account struct {
		Code string `json:"Code"`
	} `json:"Account"`
	Date      string      `json:"Date"`
	Amount    json.Number `json:"Amount"`
	Reference string      `json:"Reference,omitempty"`
}

const xeroDateFormat = "2006-01-02"

// CreateInvoice pushes an invoice staging row to Xero. Credit note rows are
// routed to the credit notes endpoint.
func (c *XeroClient) CreateInvoice(ctx context.Context, row *accounting.InvoiceStaging) (string, error) {
	if row.Kind == accounting.InvoiceKindCreditNote {
		return c.createCreditNote(ctx, row)
	}

	c.logger.Debug("Creating Xero invoice",
		zap.String("reference", row.Reference),
		zap.String("idempotency_key", row.IdempotencyKey))

	body := map[string][]xeroInvoice{
		"Invoices": {{
			Type: "ACCREC",
			Contact: xeroContact{
				Name:         row.ContactName,
				EmailAddress: row.ContactEmail,
			},
			InvoiceNumber:   row.Reference,
			Reference:       row.Reference,
			Date:            row.InvoiceDate.Format(xeroDateFormat),
			DueDate:         row.DueDate.Format(xeroDateFormat),
			Status:          "AUTHORISED",
			LineAmountTypes: "Inclusive",
			CurrencyCode:    row.Currency,
			LineItems: []xeroLineItem{{
				Description: row.Description,
				Quantity:    1,
				UnitAmount:  json.Number(row.Amount.StringFixed(2)),
				AccountCode: row.AccountCode,
			}},
		}},
	}

	var result struct {
		Invoices []struct {
			InvoiceID string `json:"InvoiceID"`
		} `json:"Invoices"`
	}
	if err := c.put(ctx, "/api.xro/2.0/Invoices", row.IdempotencyKey, body, &result); err != nil {
		return "", fmt.Errorf("xero: failed to create invoice: %w", err)
	}
	if len(result.Invoices) == 0 {
		return "", fmt.Errorf("xero: invoice response contained no invoices")
	}

	c.logger.Info("Created Xero invoice",
		zap.String("reference", row.Reference),
		zap.String("xero_invoice_id", result.Invoices[0].InvoiceID))

	return result.Invoices[0].InvoiceID, nil
}

func (c *XeroClient) createCreditNote(ctx context.Context, row *accounting.InvoiceStaging) (string, error) {
	c.logger.Debug("Creating Xero credit note",
		zap.String("reference", row.Reference),
		zap.String("idempotency_key", row.IdempotencyKey))

	body := map[string][]xeroCreditNote{
		"CreditNotes": {{
			Type: "ACCRECCREDIT",
			Contact: xeroContact{
				Name:         row.ContactName,
				EmailAddress: row.ContactEmail,
			},
			CreditNoteNumber: row.Reference,
			Date:             row.InvoiceDate.Format(xeroDateFormat),
			Status:           "AUTHORISED",
			LineAmountTypes:  "Inclusive",
			CurrencyCode:     row.Currency,
			LineItems: []xeroLineItem{{
				Description: row.Description,
				Quantity:    1,
				UnitAmount:  json.Number(row.Amount.StringFixed(2)),
				AccountCode: row.AccountCode,
			}},
		}},
	}

	var result struct {
		CreditNotes []struct {
			CreditNoteID string `json:"CreditNoteID"`
		} `json:"CreditNotes"`
	}
	if err := c.put(ctx, "/api.xro/2.0/CreditNotes", row.IdempotencyKey, body, &result); err != nil {
		return "", fmt.Errorf("xero: failed to create credit note: %w", err)
	}
	if len(result.CreditNotes) == 0 {
		return "", fmt.Errorf("xero: credit note response contained no credit notes")
	}

	c.logger.Info("Created Xero credit note",
		zap.String("reference", row.Reference),
		zap.String("xero_credit_note_id", result.CreditNotes[0].CreditNoteID))

	return result.CreditNotes[0].CreditNoteID, nil
}

// CreatePayment applies a payment against an already synced invoice
func (c *XeroClient) CreatePayment(ctx context.Context, row *accounting.PaymentStaging, xeroInvoiceID string) (string, error) {
	c.logger.Debug("Creating Xero payment",
		zap.String("xero_invoice_id", xeroInvoiceID),
		zap.String("idempotency_key", row.IdempotencyKey))

	payment := xeroPayment{
		Date:   row.PaidAt.Format(xeroDateFormat),
		Amount: json.Number(row.Amount.StringFixed(2)),
	}
	payment.Invoice.InvoiceID = xeroInvoiceID
	payment.Account.Code = row.BankAccountCode

	body := map[string][]xeroPayment{
		"Payments": {payment},
	}

	var result struct {
		Payments []struct {
			PaymentID string `json:"PaymentID"`
		} `json:"Payments"`
	}
	if err := c.put(ctx, "/api.xro/2.0/Payments", row.IdempotencyKey, body, &result); err != nil {
		return "", fmt.Errorf("xero: failed to create payment: %w", err)
	}
	if len(result.Payments) == 0 {
		return "", fmt.Errorf("xero: payment response contained no payments")
	}

	c.logger.Info("Created Xero payment",
		zap.String("xero_invoice_id", xeroInvoiceID),
		zap.String("xero_payment_id", result.Payments[0].PaymentID))

	return result.Payments[0].PaymentID, nil
}

// Ping verifies connectivity and token validity by fetching the organisation
func (c *XeroClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api.xro/2.0/Organisation", nil)
	if err != nil {
		return fmt.Errorf("xero: failed to build ping request: %w", err)
	}
	req.Header.Set("Xero-Tenant-Id", c.config.TenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("xero: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("xero: ping returned status %d", resp.StatusCode)
	}
	return nil
}

// put sends a PUT with the Xero headers and decodes the JSON response.
// Xero's PUT creates documents; replays with the same Idempotency-Key
// return the original document instead of creating a duplicate.
func (c *XeroClient) put(ctx context.Context, path, idempotencyKey string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Xero-Tenant-Id", c.config.TenantID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Xero API request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("response", strings.TrimSpace(string(detail))))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ensure XeroClient implements the gateway port
var _ accounting.XeroGateway = (*XeroClient)(nil)
