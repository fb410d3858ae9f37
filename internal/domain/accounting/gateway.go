package accounting

import "context"

// XeroGateway is the port to the Xero accounting API. The batch sync
// manager drives it one staging row at a time; implementations must send
// the row's idempotency key so replays of the same row are safe.
type XeroGateway interface {
	// CreateInvoice pushes an invoice staging row to Xero and returns the
	// remote invoice id. Credit note rows are routed to the credit notes
	// endpoint based on the row's kind.
	CreateInvoice(ctx context.Context, row *InvoiceStaging) (string, error)

	// CreatePayment applies a payment against an already synced invoice
	// and returns the remote payment id.
	CreatePayment(ctx context.Context, row *PaymentStaging, xeroInvoiceID string) (string, error)

	// Ping verifies connectivity and token validity against the Xero API
	Ping(ctx context.Context) error
}
