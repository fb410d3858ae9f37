package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// In-memory fakes backing the billing service tests.

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*billing.Payment
}

func newMemPaymentRepo(payments ...*billing.Payment) *memPaymentRepo {
	r := &memPaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
	for _, p := range payments {
		r.payments[p.ID] = p
	}
	return r
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByStripePaymentIntent(_ context.Context, paymentIntentID string) (*billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StripePaymentIntentID == paymentIntentID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByRegistration(_ context.Context, registrationID uuid.UUID) ([]billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Payment
	for _, p := range r.payments {
		if p.RegistrationID == registrationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindAll(_ context.Context, filter billing.PaymentFilter) ([]billing.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Payment
	for _, p := range r.payments {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = payment
	return nil
}

type memRefundRepo struct {
	mu      sync.Mutex
	refunds map[uuid.UUID]*billing.Refund
}

func newMemRefundRepo(refunds ...*billing.Refund) *memRefundRepo {
	r := &memRefundRepo{refunds: make(map[uuid.UUID]*billing.Refund)}
	for _, rf := range refunds {
		r.refunds[rf.ID] = rf
	}
	return r
}

func (r *memRefundRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rf, ok := r.refunds[id]; ok {
		return rf, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRefundRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]billing.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Refund
	for _, rf := range r.refunds {
		if rf.PaymentID == paymentID {
			out = append(out, *rf)
		}
	}
	return out, nil
}

func (r *memRefundRepo) FindByStripeRefundID(_ context.Context, stripeRefundID string) (*billing.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rf := range r.refunds {
		if rf.StripeRefundID == stripeRefundID {
			return rf, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memRefundRepo) Save(_ context.Context, refund *billing.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds[refund.ID] = refund
	return nil
}

type memPlanRepo struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*billing.PaymentPlan
}

func newMemPlanRepo(plans ...*billing.PaymentPlan) *memPlanRepo {
	r := &memPlanRepo{plans: make(map[uuid.UUID]*billing.PaymentPlan)}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *memPlanRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.PaymentPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPlanRepo) FindByRegistration(_ context.Context, registrationID uuid.UUID) (*billing.PaymentPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.RegistrationID == registrationID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPlanRepo) FindByInstallment(_ context.Context, installmentID uuid.UUID) (*billing.PaymentPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		for i := range p.Installments {
			if p.Installments[i].ID == installmentID {
				return p, nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPlanRepo) FindWithDueInstallments(_ context.Context, now time.Time) ([]billing.PaymentPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.PaymentPlan
	for _, p := range r.plans {
		if p.Status != billing.PaymentPlanStatusActive {
			continue
		}
		if len(p.DueInstallments(now)) > 0 {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) Save(_ context.Context, plan *billing.PaymentPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = plan
	return nil
}

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

type stubProductRepo struct {
	products map[uuid.UUID]*membership.MembershipProduct
}

func newStubProductRepo(products ...*membership.MembershipProduct) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*membership.MembershipProduct)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.MembershipProduct, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindAll(_ context.Context, _ membership.ProductFilter) ([]membership.MembershipProduct, int64, error) {
	return nil, 0, nil
}

func (r *stubProductRepo) Save(_ context.Context, product *membership.MembershipProduct) error {
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

// fakeStripeGateway records created intents and refunds
type fakeStripeGateway struct {
	mu         sync.Mutex
	seq        int
	intentErr  error
	refundErr  error
	intents    []map[string]string
	refundIDs  []string
	lastAmount decimal.Decimal
}

func (g *fakeStripeGateway) CreatePaymentIntent(_ context.Context, amount decimal.Decimal, _ string, metadata map[string]string) (*billing.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	g.seq++
	g.intents = append(g.intents, metadata)
	g.lastAmount = amount
	return &billing.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", g.seq),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.seq),
	}, nil
}

func (g *fakeStripeGateway) CreateRefund(_ context.Context, _ string, _ decimal.Decimal, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return "", g.refundErr
	}
	g.seq++
	id := fmt.Sprintf("re_test_%d", g.seq)
	g.refundIDs = append(g.refundIDs, id)
	return id, nil
}

// fakeVerifier returns the configured event without touching the payload
type fakeVerifier struct {
	event *billing.WebhookEvent
	err   error
}

func (v *fakeVerifier) VerifyAndParse(_ []byte, _ string) (*billing.WebhookEvent, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.event, nil
}

// mapIdempotencyStore is a map-backed store for dedupe tests
type mapIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMapIdempotencyStore() *mapIdempotencyStore {
	return &mapIdempotencyStore{seen: make(map[string]bool)}
}

func (s *mapIdempotencyStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *mapIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *mapIdempotencyStore) Release(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, eventID)
	return nil
}

func (s *mapIdempotencyStore) Close() error {
	return nil
}
