package accounting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// In-memory repositories backing the service tests. Rows are kept in
// insertion order so claim batches are deterministic.

type memInvoiceStagingRepo struct {
	mu   sync.Mutex
	rows []*accounting.InvoiceStaging
}

func newMemInvoiceStagingRepo() *memInvoiceStagingRepo {
	return &memInvoiceStagingRepo{}
}

func (r *memInvoiceStagingRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.InvoiceStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceStagingRepo) FindByIdempotencyKey(_ context.Context, key string) (*accounting.InvoiceStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.IdempotencyKey == key {
			return row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceStagingRepo) FindByRegistration(_ context.Context, registrationID uuid.UUID) ([]accounting.InvoiceStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []accounting.InvoiceStaging
	for _, row := range r.rows {
		if row.RegistrationID == registrationID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memInvoiceStagingRepo) FindAll(_ context.Context, filter accounting.StagingFilter) ([]accounting.InvoiceStaging, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []accounting.InvoiceStaging
	for _, row := range r.rows {
		if filter.Status != nil && row.SyncStatus != *filter.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (r *memInvoiceStagingRepo) ClaimPending(_ context.Context, limit int, now time.Time) ([]*accounting.InvoiceStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*accounting.InvoiceStaging
	for _, row := range r.rows {
		if len(claimed) >= limit {
			break
		}
		if !claimable(row.SyncStatus, row.NextRetryAt, now) {
			continue
		}
		if err := row.MarkStaged(); err != nil {
			return nil, err
		}
		claimed = append(claimed, row)
	}
	return claimed, nil
}

func (r *memInvoiceStagingRepo) ReclaimStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reclaimed int64
	for _, row := range r.rows {
		if row.SyncStatus != accounting.SyncStatusStaged || !row.UpdatedAt.Before(cutoff) {
			continue
		}
		row.SyncStatus = accounting.SyncStatusPending
		row.UpdatedAt = time.Now()
		reclaimed++
	}
	return reclaimed, nil
}

func (r *memInvoiceStagingRepo) Save(_ context.Context, row *accounting.InvoiceStaging) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rows {
		if existing.ID == row.ID {
			r.rows[i] = row
			return nil
		}
	}
	r.rows = append(r.rows, row)
	return nil
}

func (r *memInvoiceStagingRepo) CountByStatus(_ context.Context) (map[accounting.SyncStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[accounting.SyncStatus]int64)
	for _, row := range r.rows {
		counts[row.SyncStatus]++
	}
	return counts, nil
}

func (r *memInvoiceStagingRepo) ExistsByIdempotencyKey(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.IdempotencyKey == key {
			return true, nil
		}
	}
	return false, nil
}

type memPaymentStagingRepo struct {
	mu   sync.Mutex
	rows []*accounting.PaymentStaging
}

func newMemPaymentStagingRepo() *memPaymentStagingRepo {
	return &memPaymentStagingRepo{}
}

func (r *memPaymentStagingRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.PaymentStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentStagingRepo) FindByIdempotencyKey(_ context.Context, key string) (*accounting.PaymentStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.IdempotencyKey == key {
			return row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentStagingRepo) FindByInvoiceStaging(_ context.Context, invoiceStagingID uuid.UUID) ([]accounting.PaymentStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []accounting.PaymentStaging
	for _, row := range r.rows {
		if row.InvoiceStagingID == invoiceStagingID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memPaymentStagingRepo) FindAll(_ context.Context, filter accounting.StagingFilter) ([]accounting.PaymentStaging, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []accounting.PaymentStaging
	for _, row := range r.rows {
		if filter.Status != nil && row.SyncStatus != *filter.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (r *memPaymentStagingRepo) ClaimPending(_ context.Context, limit int, now time.Time) ([]*accounting.PaymentStaging, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*accounting.PaymentStaging
	for _, row := range r.rows {
		if len(claimed) >= limit {
			break
		}
		if !claimable(row.SyncStatus, row.NextRetryAt, now) {
			continue
		}
		if err := row.MarkStaged(); err != nil {
			return nil, err
		}
		claimed = append(claimed, row)
	}
	return claimed, nil
}

func (r *memPaymentStagingRepo) PromoteDue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var promoted int64
	for _, row := range r.rows {
		if row.SyncStatus != accounting.SyncStatusPlanned {
			continue
		}
		if row.DueAt == nil || row.DueAt.After(now) {
			continue
		}
		if err := row.Promote(*row.DueAt); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

func (r *memPaymentStagingRepo) ReclaimStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reclaimed int64
	for _, row := range r.rows {
		if row.SyncStatus != accounting.SyncStatusStaged || !row.UpdatedAt.Before(cutoff) {
			continue
		}
		row.SyncStatus = accounting.SyncStatusPending
		row.UpdatedAt = time.Now()
		reclaimed++
	}
	return reclaimed, nil
}

func (r *memPaymentStagingRepo) Save(_ context.Context, row *accounting.PaymentStaging) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rows {
		if existing.ID == row.ID {
			r.rows[i] = row
			return nil
		}
	}
	r.rows = append(r.rows, row)
	return nil
}

func (r *memPaymentStagingRepo) CountByStatus(_ context.Context) (map[accounting.SyncStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[accounting.SyncStatus]int64)
	for _, row := range r.rows {
		counts[row.SyncStatus]++
	}
	return counts, nil
}

func (r *memPaymentStagingRepo) ExistsByIdempotencyKey(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.IdempotencyKey == key {
			return true, nil
		}
	}
	return false, nil
}

func claimable(status accounting.SyncStatus, nextRetryAt *time.Time, now time.Time) bool {
	switch status {
	case accounting.SyncStatusPending:
		return true
	case accounting.SyncStatusFailed:
		return nextRetryAt != nil && !nextRetryAt.After(now)
	}
	return false
}

type memSyncRunRepo struct {
	mu   sync.Mutex
	runs []*accounting.SyncRun
}

func newMemSyncRunRepo() *memSyncRunRepo {
	return &memSyncRunRepo{}
}

func (r *memSyncRunRepo) Save(_ context.Context, run *accounting.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.runs {
		if existing.ID == run.ID {
			r.runs[i] = run
			return nil
		}
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *memSyncRunRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memSyncRunRepo) FindRecent(_ context.Context, limit int) ([]accounting.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []accounting.SyncRun
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.runs[i])
	}
	return out, nil
}

// fakeXeroGateway records pushed rows and fails on configured keys
type fakeXeroGateway struct {
	mu          sync.Mutex
	failInvoice map[string]error
	failPayment map[string]error
	invoices    []string
	payments    []string
	seq         int
}

func newFakeXeroGateway() *fakeXeroGateway {
	return &fakeXeroGateway{
		failInvoice: make(map[string]error),
		failPayment: make(map[string]error),
	}
}

func (g *fakeXeroGateway) CreateInvoice(_ context.Context, row *accounting.InvoiceStaging) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failInvoice[row.IdempotencyKey]; ok {
		return "", err
	}
	g.seq++
	id := fmt.Sprintf("xero-inv-%d", g.seq)
	g.invoices = append(g.invoices, row.IdempotencyKey)
	return id, nil
}

func (g *fakeXeroGateway) CreatePayment(_ context.Context, row *accounting.PaymentStaging, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failPayment[row.IdempotencyKey]; ok {
		return "", err
	}
	g.seq++
	id := fmt.Sprintf("xero-pay-%d", g.seq)
	g.payments = append(g.payments, row.IdempotencyKey)
	return id, nil
}

func (g *fakeXeroGateway) Ping(_ context.Context) error {
	return nil
}

// stubMemberRepo serves the members the staging writer resolves contacts from
type stubMemberRepo struct {
	members map[uuid.UUID]*membership.Member
}

func newStubMemberRepo(members ...*membership.Member) *stubMemberRepo {
	r := &stubMemberRepo{members: make(map[uuid.UUID]*membership.Member)}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (r *stubMemberRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.Member, error) {
	if m, ok := r.members[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubMemberRepo) FindByEmail(_ context.Context, email string) (*membership.Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubMemberRepo) FindAll(_ context.Context, _ membership.MemberFilter) ([]membership.Member, int64, error) {
	return nil, 0, nil
}

func (r *stubMemberRepo) Save(_ context.Context, member *membership.Member) error {
	r.members[member.ID] = member
	return nil
}

func (r *stubMemberRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.members, id)
	return nil
}

func (r *stubMemberRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, m := range r.members {
		if m.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// stubRegistrationRepo serves registrations by ID
type stubRegistrationRepo struct {
	registrations map[uuid.UUID]*membership.Registration
}

func newStubRegistrationRepo(registrations ...*membership.Registration) *stubRegistrationRepo {
	r := &stubRegistrationRepo{registrations: make(map[uuid.UUID]*membership.Registration)}
	for _, reg := range registrations {
		r.registrations[reg.ID] = reg
	}
	return r
}

func (r *stubRegistrationRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.Registration, error) {
	if reg, ok := r.registrations[id]; ok {
		return reg, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubRegistrationRepo) FindByReference(_ context.Context, reference string) (*membership.Registration, error) {
	for _, reg := range r.registrations {
		if reg.Reference == reference {
			return reg, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubRegistrationRepo) FindByMemberAndSeason(_ context.Context, memberID, seasonID uuid.UUID) (*membership.Registration, error) {
	for _, reg := range r.registrations {
		if reg.MemberID == memberID && reg.SeasonID == seasonID {
			return reg, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubRegistrationRepo) FindAll(_ context.Context, _ membership.RegistrationFilter) ([]membership.Registration, int64, error) {
	return nil, 0, nil
}

func (r *stubRegistrationRepo) Save(_ context.Context, registration *membership.Registration) error {
	r.registrations[registration.ID] = registration
	return nil
}

func (r *stubRegistrationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.registrations, id)
	return nil
}

func (r *stubRegistrationRepo) NextReference(_ context.Context) (string, error) {
	return fmt.Sprintf("REG-%04d", len(r.registrations)+1), nil
}
