package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func paymentRows(paymentID, registrationID, memberID uuid.UUID, intentID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "registration_id", "member_id", "amount", "currency",
		"status", "stripe_payment_intent_id", "refunded_amount", "version",
	}).AddRow(paymentID, registrationID, memberID, decimal.NewFromInt(350), "AUD",
		status, intentID, decimal.Zero, 1)
}

func TestGormPaymentRepository_FindByID(t *testing.T) {
	t.Run("finds existing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		registrationID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(paymentID, 1).
			WillReturnRows(paymentRows(paymentID, registrationID, uuid.New(), "pi_123", "PENDING"))

		payment, err := repo.FindByID(context.Background(), paymentID)

		assert.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, paymentID, payment.ID)
		assert.Equal(t, registrationID, payment.RegistrationID)
		assert.Equal(t, billing.PaymentStatusPending, payment.Status)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(350)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(paymentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByID(context.Background(), paymentID)

		assert.Error(t, err)
		assert.Nil(t, payment)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByStripePaymentIntent(t *testing.T) {
	t.Run("finds payment by intent id", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE stripe_payment_intent_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("pi_123", 1).
			WillReturnRows(paymentRows(paymentID, uuid.New(), uuid.New(), "pi_123", "SUCCEEDED"))

		payment, err := repo.FindByStripePaymentIntent(context.Background(), "pi_123")

		assert.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, "pi_123", payment.StripePaymentIntentID)
		assert.Equal(t, billing.PaymentStatusSucceeded, payment.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty intent id without querying", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		payment, err := repo.FindByStripePaymentIntent(context.Background(), "")

		assert.Error(t, err)
		assert.Nil(t, payment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByRegistration(t *testing.T) {
	t.Run("lists payments for a registration oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		registrationID := uuid.New()
		memberID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "registration_id", "member_id", "amount", "currency",
			"status", "stripe_payment_intent_id", "refunded_amount", "version",
		}).
			AddRow(uuid.New(), registrationID, memberID, decimal.NewFromInt(175), "AUD", "SUCCEEDED", "pi_1", decimal.Zero, 1).
			AddRow(uuid.New(), registrationID, memberID, decimal.NewFromInt(175), "AUD", "PENDING", "pi_2", decimal.Zero, 1)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE registration_id = \$1 ORDER BY created_at ASC`).
			WithArgs(registrationID).
			WillReturnRows(rows)

		payments, err := repo.FindByRegistration(context.Background(), registrationID)

		assert.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, "pi_1", payments[0].StripePaymentIntentID)
		assert.Equal(t, billing.PaymentStatusPending, payments[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
