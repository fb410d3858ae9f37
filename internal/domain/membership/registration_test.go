package membership_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeason(t *testing.T) *membership.Season {
	t.Helper()
	now := time.Now()
	s, err := membership.NewSeason(
		"2026/27 Winter",
		now.AddDate(0, 1, 0), now.AddDate(0, 7, 0),
		now.AddDate(0, 0, -7), now.AddDate(0, 1, 0),
	)
	require.NoError(t, err)
	return s
}

func newTestProduct(t *testing.T) *membership.MembershipProduct {
	t.Helper()
	p, err := membership.NewMembershipProduct(
		"Senior", "Senior membership 2026/27",
		decimal.NewFromInt(450), "AUD", "200",
	)
	require.NoError(t, err)
	return p
}

func newSubmittedRegistration(t *testing.T) (*membership.Registration, *membership.Season, *membership.MembershipProduct) {
	t.Helper()
	season := newTestSeason(t)
	product := newTestProduct(t)
	reg, err := membership.NewRegistration("REG-2026-0001", uuid.New(), season.ID, product.ID)
	require.NoError(t, err)
	require.NoError(t, reg.Submit(season, product, time.Now()))
	return reg, season, product
}

func TestNewRegistration(t *testing.T) {
	season := newTestSeason(t)
	product := newTestProduct(t)

	reg, err := membership.NewRegistration("REG-2026-0001", uuid.New(), season.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.RegistrationStatusDraft, reg.Status)
	assert.True(t, reg.Amount.IsZero())

	_, err = membership.NewRegistration("", uuid.New(), season.ID, product.ID)
	assert.Error(t, err)

	_, err = membership.NewRegistration("REG-2026-0002", uuid.Nil, season.ID, product.ID)
	assert.Error(t, err)
}

func TestRegistrationSubmitSnapshotsFee(t *testing.T) {
	reg, _, product := newSubmittedRegistration(t)

	assert.Equal(t, membership.RegistrationStatusPendingPayment, reg.Status)
	assert.True(t, reg.Amount.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, "AUD", reg.Currency)
	assert.Equal(t, "200", reg.AccountCode)
	require.NotNil(t, reg.SubmittedAt)

	// Later price changes must not affect the submitted registration
	require.NoError(t, product.UpdatePricing(decimal.NewFromInt(500), "210"))
	assert.True(t, reg.Amount.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, "200", reg.AccountCode)
}

func TestRegistrationSubmitOutsideWindow(t *testing.T) {
	now := time.Now()
	season, err := membership.NewSeason(
		"2025/26 Winter",
		now.AddDate(-1, 0, 0), now.AddDate(0, -6, 0),
		now.AddDate(-1, -1, 0), now.AddDate(-1, 0, 0),
	)
	require.NoError(t, err)
	product := newTestProduct(t)

	reg, err := membership.NewRegistration("REG-2025-0001", uuid.New(), season.ID, product.ID)
	require.NoError(t, err)

	err = reg.Submit(season, product, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open for registration")
	assert.Equal(t, membership.RegistrationStatusDraft, reg.Status)
}

func TestRegistrationSubmitInactiveProduct(t *testing.T) {
	season := newTestSeason(t)
	product := newTestProduct(t)
	product.Deactivate()

	reg, err := membership.NewRegistration("REG-2026-0003", uuid.New(), season.ID, product.ID)
	require.NoError(t, err)
	assert.Error(t, reg.Submit(season, product, time.Now()))
}

func TestRegistrationMarkPaid(t *testing.T) {
	reg, _, _ := newSubmittedRegistration(t)
	paymentID := uuid.New()
	paidAt := time.Now()

	require.NoError(t, reg.MarkPaid(paymentID, paidAt))
	assert.True(t, reg.IsPaid())
	require.NotNil(t, reg.PaymentID)
	assert.Equal(t, paymentID, *reg.PaymentID)

	events := reg.GetDomainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, "RegistrationPaid", events[len(events)-1].EventType())
}

func TestRegistrationMarkPaidIdempotent(t *testing.T) {
	reg, _, _ := newSubmittedRegistration(t)
	paymentID := uuid.New()

	require.NoError(t, reg.MarkPaid(paymentID, time.Now()))
	eventCount := len(reg.GetDomainEvents())

	// Webhook replay with the same payment is a no-op
	require.NoError(t, reg.MarkPaid(paymentID, time.Now()))
	assert.Len(t, reg.GetDomainEvents(), eventCount)

	// A different payment against a paid registration is rejected
	err := reg.MarkPaid(uuid.New(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already recorded")
}

func TestRegistrationCannotPayDraft(t *testing.T) {
	season := newTestSeason(t)
	product := newTestProduct(t)
	reg, err := membership.NewRegistration("REG-2026-0004", uuid.New(), season.ID, product.ID)
	require.NoError(t, err)

	assert.Error(t, reg.MarkPaid(uuid.New(), time.Now()))
}

func TestRegistrationCancel(t *testing.T) {
	reg, _, _ := newSubmittedRegistration(t)

	require.NoError(t, reg.Cancel("member withdrew"))
	assert.Equal(t, membership.RegistrationStatusCancelled, reg.Status)
	require.NotNil(t, reg.CancelledAt)

	assert.Error(t, reg.Cancel("twice"))
	assert.Error(t, reg.MarkPaid(uuid.New(), time.Now()))
}

func TestRegistrationPaymentPlan(t *testing.T) {
	reg, _, product := newSubmittedRegistration(t)

	// Product must allow installments first
	assert.Error(t, reg.SelectPaymentPlan(product))

	product.EnableInstallments()
	require.NoError(t, reg.SelectPaymentPlan(product))
	assert.True(t, reg.OnPaymentPlan)
}

func TestProductEligibility(t *testing.T) {
	product := newTestProduct(t)
	minAge, maxAge := 18, 35
	require.NoError(t, product.SetAgeLimits(&minAge, &maxAge))

	assert.True(t, product.EligibleFor(18))
	assert.True(t, product.EligibleFor(35))
	assert.False(t, product.EligibleFor(17))
	assert.False(t, product.EligibleFor(36))

	bad := 40
	assert.Error(t, product.SetAgeLimits(&bad, &maxAge))
}
