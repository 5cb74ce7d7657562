package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormContractRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "KH001", "Lê Quang Hải")
	c := seedContract(t, db, customer.ID, "HD-2026-001", contract.ServiceTypeTrademark)

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "HD-2026-001", found.ContractNo)
	assert.Equal(t, customer.ID, found.CustomerID)
	assert.True(t, decimal.NewFromInt(30_000_000).Equal(found.ContractValue))
	assert.True(t, decimal.NewFromInt(5_000_000).Equal(found.PrepaidAmount))
	assert.Equal(t, contract.PaymentTypeInstallment, found.PaymentType)
	assert.Equal(t, contract.StatusProcessing, found.Status)
	assert.Equal(t, 3, found.InstallmentCount)

	byNo, err := repo.FindByContractNo(ctx, "HD-2026-001")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byNo.ID)

	exists, err := repo.ExistsByContractNo(ctx, "HD-2026-001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByContractNo(ctx, "HD-2026-999")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, found.Pause())
	require.NoError(t, repo.Save(ctx, found))
	locked, err := repo.FindByIDForUpdate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusPaused, locked.Status)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormContractRepository_DuplicateContractNo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)

	customer := seedCustomer(t, db, "KH001", "Lê Quang Hải")
	seedContract(t, db, customer.ID, "HD-001", contract.ServiceTypeTrademark)

	dup, err := contract.NewContract(contract.Terms{
		ContractNo:    "HD-001",
		CustomerID:    customer.ID,
		ServiceType:   contract.ServiceTypeOther,
		ContractValue: decimal.NewFromInt(1_000_000),
		PaymentType:   contract.PaymentTypeFull,
	})
	require.NoError(t, err)

	err = repo.Save(context.Background(), dup)
	assert.ErrorIs(t, err, contract.ErrDuplicateContractNo)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormContractRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()

	hai := seedCustomer(t, db, "KH001", "Lê Quang Hải")
	chau := seedCustomer(t, db, "KH002", "Phạm Minh Châu")
	seedContract(t, db, hai.ID, "NH-001", contract.ServiceTypeTrademark)
	seedContract(t, db, hai.ID, "BQ-001", contract.ServiceTypeCopyright)
	paused := seedContract(t, db, chau.ID, "NH-002", contract.ServiceTypeTrademark)
	require.NoError(t, paused.Pause())
	require.NoError(t, repo.Save(ctx, paused))

	tests := []struct {
		name   string
		filter func(f *contract.ContractFilter)
		want   []string
	}{
		{"service type", func(f *contract.ContractFilter) { f.ServiceType = contract.ServiceTypeTrademark }, []string{"NH-001", "NH-002"}},
		{"status", func(f *contract.ContractFilter) { f.Status = contract.StatusPaused }, []string{"NH-002"}},
		{"customer", func(f *contract.ContractFilter) { f.CustomerID = &hai.ID }, []string{"BQ-001", "NH-001"}},
		{"query by contract number", func(f *contract.ContractFilter) { f.Query = "bq-0" }, []string{"BQ-001"}},
		{"query by customer code", func(f *contract.ContractFilter) { f.Query = "kh002" }, []string{"NH-002"}},
		{"query by customer name without accents", func(f *contract.ContractFilter) { f.Query = "quang hai" }, []string{"BQ-001", "NH-001"}},
		{"query combined with service type", func(f *contract.ContractFilter) {
			f.Query = "Hải"
			f.ServiceType = contract.ServiceTypeTrademark
		}, []string{"NH-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := contract.DefaultContractFilter()
			filter.OrderBy = "contract_no"
			filter.OrderDir = "asc"
			tt.filter(&filter)

			contracts, err := repo.FindAll(ctx, filter)
			require.NoError(t, err)
			numbers := make([]string, len(contracts))
			for i, c := range contracts {
				numbers[i] = c.ContractNo
			}
			assert.Equal(t, tt.want, numbers)

			total, err := repo.Count(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}

	t.Run("pagination", func(t *testing.T) {
		filter := contract.DefaultContractFilter()
		filter.PageSize = 2
		filter.Page = 2

		contracts, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, contracts, 1)
	})

	t.Run("by customer", func(t *testing.T) {
		contracts, err := repo.FindByCustomer(ctx, chau.ID)
		require.NoError(t, err)
		require.Len(t, contracts, 1)
		assert.Equal(t, "NH-002", contracts[0].ContractNo)
	})
}

func TestGormContractRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "KH001", "Lê Quang Hải")
	c := seedContract(t, db, customer.ID, "HD-001", contract.ServiceTypeTrademark)
	items := seedSchedule(t, db, c)

	log, err := contract.NewPaymentLog(items[1], decimal.NewFromInt(1_000_000), items[1].DueDate.UTC(), "", nil)
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentLogRepository(db).Create(ctx, log))
	require.NoError(t, NewGormHistoryRepository(db).Create(ctx, contract.NewHistory(c.ID, "ketoan", contract.ActionCreated, nil, map[string]string{"contract_no": "HD-001"})))
	require.NoError(t, NewGormServiceDetailRepository(db).Replace(ctx, c.ID, &contract.ServiceDetails{
		Trademarks: []contract.TrademarkService{{Applicant: "Lê Quang Hải", TrademarkName: "SAO MAI"}},
	}))

	require.NoError(t, repo.Delete(ctx, c.ID))

	for name, model := range map[string]any{
		"contracts":    &models.ContractModel{},
		"installments": &models.InstallmentModel{},
		"logs":         &models.PaymentLogModel{},
		"history":      &models.HistoryModel{},
		"trademarks":   &models.TrademarkServiceModel{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, name)
	}

	assert.ErrorIs(t, repo.Delete(ctx, c.ID), shared.ErrNotFound)
}

func TestGormContractRepository_FindByIDForUpdate_Postgres(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormContractRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "contract_no", "status", "contract_value"}).
		AddRow(id.String(), "HD-001", "processing", "30000000")
	mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	c, err := repo.FindByIDForUpdate(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "HD-001", c.ContractNo)
	assert.True(t, decimal.NewFromInt(30_000_000).Equal(c.ContractValue))
	assert.NoError(t, mock.ExpectationsWereMet())
}
