package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInstallmentRepository_Schedule(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "KH001", "Lê Quang Hải")
	c := seedContract(t, db, customer.ID, "HD-001", contract.ServiceTypeTrademark)
	items := seedSchedule(t, db, c)

	schedule, err := repo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	total := decimal.Zero
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.InstallmentNo)
		assert.Equal(t, items[i].ID, inst.ID)
		total = total.Add(inst.Amount)
	}
	assert.True(t, decimal.NewFromInt(30_000_000).Equal(total))
	assert.True(t, decimal.NewFromInt(5_000_000).Equal(schedule[0].PaidAmount), "prepaid seeds the first installment")
	require.NotNil(t, schedule[2].DueDate)
	assert.Equal(t, "2026-04-30", schedule[2].DueDate.Format("2006-01-02"))

	t.Run("save applies a payment", func(t *testing.T) {
		inst, err := repo.FindByIDForUpdate(ctx, schedule[1].ID)
		require.NoError(t, err)
		require.NoError(t, inst.ApplyPayment(inst.Outstanding(), time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)))
		require.NoError(t, repo.Save(ctx, inst))

		reloaded, err := repo.FindByID(ctx, inst.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.IsPaid())
		require.NotNil(t, reloaded.PaidDate)
	})

	t.Run("installment numbers are unique per contract", func(t *testing.T) {
		dup := *items[0]
		dup.BaseEntity = shared.NewBaseEntity()
		err := repo.CreateBatch(ctx, []*contract.PaymentInstallment{&dup})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("delete by contract removes logs too", func(t *testing.T) {
		log, err := contract.NewPaymentLog(&schedule[0], decimal.NewFromInt(1), time.Now(), "", nil)
		require.NoError(t, err)
		require.NoError(t, NewGormPaymentLogRepository(db).Create(ctx, log))

		require.NoError(t, repo.DeleteByContract(ctx, c.ID))

		remaining, err := repo.FindByContract(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
		logs, err := NewGormPaymentLogRepository(db).FindByContract(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.CreateBatch(ctx, nil))
	})

	t.Run("missing installment", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInstallmentRepository_FindByIDForUpdate_Postgres(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInstallmentRepository(db)

	id := uuid.New()
	contractID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "contract_id", "installment_no", "amount", "paid_amount"}).
		AddRow(id.String(), contractID.String(), 2, "10000000", "2500000")
	mock.ExpectQuery(`SELECT \* FROM "payment_installments" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	inst, err := repo.FindByIDForUpdate(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, contractID, inst.ContractID)
	assert.Equal(t, 2, inst.InstallmentNo)
	assert.True(t, decimal.NewFromInt(7_500_000).Equal(inst.Outstanding()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
