package accounting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testInvoiceRow(t *testing.T, kind accounting.InvoiceKind) *accounting.InvoiceStaging {
	t.Helper()
	row, err := accounting.NewInvoiceStaging(
		kind,
		uuid.New(),
		uuid.New(),
		"Jamie Byrne",
		"jamie@example.com",
		"REG-2026-0042",
		"Season registration REG-2026-0042",
		"200",
		decimal.NewFromFloat(450.00),
		"AUD",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		"invoice:"+uuid.NewString(),
		accounting.StagingMetadata{},
	)
	require.NoError(t, err)
	return row
}

func testPaymentRow(t *testing.T, invoiceID uuid.UUID) *accounting.PaymentStaging {
	t.Helper()
	row, err := accounting.NewPaymentStaging(
		invoiceID,
		uuid.New(),
		uuid.New(),
		uuid.New(),
		decimal.NewFromFloat(450.00),
		"AUD",
		"090",
		time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		"payment:"+uuid.NewString(),
		accounting.StagingMetadata{},
	)
	require.NoError(t, err)
	return row
}

func newTestClient(t *testing.T, handler http.Handler) (*XeroClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewXeroClientWithHTTPClient(&XeroConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		TenantID:     "tenant-1",
		BaseURL:      server.URL,
	}, server.Client(), zap.NewNop())
	return client, server
}

func TestXeroClient_CreateInvoice(t *testing.T) {
	var gotPath, gotTenant, gotIdempotencyKey string
	var gotBody map[string][]map[string]interface{}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTenant = r.Header.Get("Xero-Tenant-Id")
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Invoices":[{"InvoiceID":"xero-inv-1"}]}`))
	}))

	row := testInvoiceRow(t, accounting.InvoiceKindInvoice)
	xeroID, err := client.CreateInvoice(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, "xero-inv-1", xeroID)

	assert.Equal(t, "/api.xro/2.0/Invoices", gotPath)
	assert.Equal(t, "tenant-1", gotTenant)
	assert.Equal(t, row.IdempotencyKey, gotIdempotencyKey)

	invoice := gotBody["Invoices"][0]
	assert.Equal(t, "ACCREC", invoice["Type"])
	assert.Equal(t, "AUTHORISED", invoice["Status"])
	assert.Equal(t, "REG-2026-0042", invoice["InvoiceNumber"])
	assert.Equal(t, "2026-03-01", invoice["Date"])
	assert.Equal(t, "2026-03-15", invoice["DueDate"])

	lineItems := invoice["LineItems"].([]interface{})
	require.Len(t, lineItems, 1)
	assert.Equal(t, 450.0, lineItems[0].(map[string]interface{})["UnitAmount"])
	assert.Equal(t, "200", lineItems[0].(map[string]interface{})["AccountCode"])
}

func TestXeroClient_CreateInvoice_RoutesCreditNotes(t *testing.T) {
	var gotPath string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"CreditNotes":[{"CreditNoteID":"xero-cn-1"}]}`))
	}))

	row := testInvoiceRow(t, accounting.InvoiceKindCreditNote)
	xeroID, err := client.CreateInvoice(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, "xero-cn-1", xeroID)
	assert.Equal(t, "/api.xro/2.0/CreditNotes", gotPath)
}

func TestXeroClient_CreateInvoice_APIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"Type":"ValidationException","Message":"Account code '999' is not valid"}`))
	}))

	row := testInvoiceRow(t, accounting.InvoiceKindInvoice)
	_, err := client.CreateInvoice(context.Background(), row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Account code '999' is not valid")
}

func TestXeroClient_CreatePayment(t *testing.T) {
	var gotBody map[string][]map[string]interface{}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Payments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Payments":[{"PaymentID":"xero-pay-1"}]}`))
	}))

	row := testPaymentRow(t, uuid.New())
	xeroID, err := client.CreatePayment(context.Background(), row, "xero-inv-1")
	require.NoError(t, err)
	assert.Equal(t, "xero-pay-1", xeroID)

	payment := gotBody["Payments"][0]
	assert.Equal(t, "xero-inv-1", payment["Invoice"].(map[string]interface{})["InvoiceID"])
	assert.Equal(t, "090", payment["Account"].(map[string]interface{})["Code"])
	assert.Equal(t, "2026-03-02", payment["Date"])
	assert.Equal(t, 450.0, payment["Amount"])
}

func TestXeroClient_Ping(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api.xro/2.0/Organisation", r.URL.Path)
			w.Write([]byte(`{"Organisations":[{"Name":"Rinkpass HC"}]}`))
		}))
		require.NoError(t, client.Ping(context.Background()))
	})

	t.Run("unauthorized", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		err := client.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}
