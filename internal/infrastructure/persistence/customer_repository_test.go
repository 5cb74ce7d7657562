package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormCustomerRepository_FindByID_Postgres(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		customerID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "customer_code", "name", "type", "status", "version"}).
			AddRow(customerID.String(), "KH001", "Công ty Ánh Dương", "company", "approved", 1)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByID(context.Background(), customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "KH001", customer.Code)
		assert.Equal(t, partner.CustomerTypeCompany, customer.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		customerID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), customerID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "kh001", "Nguyễn Văn Đức")

	found, err := repo.FindByCode(ctx, "KH001")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)
	assert.Equal(t, "Nguyễn Văn Đức", found.Name)
	assert.Equal(t, partner.CustomerStatusApproved, found.Status)

	var model models.CustomerModel
	require.NoError(t, db.First(&model, "id = ?", customer.ID).Error)
	assert.Contains(t, model.SearchKey, "nguyen van duc")
	assert.Equal(t, "kh001 nguyen van duc", model.NameKey)

	require.NoError(t, found.ChangeStatus(partner.CustomerStatusPending))
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, partner.CustomerStatusPending, reloaded.Status)
}

func TestGormCustomerRepository_FindAllAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, db, "KH001", "Nguyễn Văn Bình")
	seedCustomer(t, db, "KH002", "Trần Thị Lan")
	third := seedCustomer(t, db, "KH003", "Công ty Bình Minh")
	require.NoError(t, third.ChangeStatus(partner.CustomerStatusPending))
	require.NoError(t, repo.Save(ctx, third))

	t.Run("accent-insensitive search", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "binh"

		customers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, customers, 2)

		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("status filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = "pending"

		customers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "KH003", customers[0].Code)
	})

	t.Run("pagination with whitelisted ordering", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "customer_code"
		filter.OrderDir = "asc"
		filter.PageSize = 2
		filter.Page = 2

		customers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "KH003", customers[0].Code)

		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("unknown order column falls back", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "name; DROP TABLE customers"

		customers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, customers, 3)
	})
}

func TestGormCustomerRepository_Lookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, db, "KH002", "Phạm Minh Châu")
	seedCustomer(t, db, "KH001", "Lê Quang Hải")
	seedCustomer(t, db, "AB100", "Hoàng Anh")

	byCode, err := repo.Lookup(ctx, "kh0", 10)
	require.NoError(t, err)
	require.Len(t, byCode, 2)
	assert.Equal(t, "KH001", byCode[0].Code)

	byName, err := repo.Lookup(ctx, "CHAU", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "KH002", byName[0].Code)

	limited, err := repo.Lookup(ctx, "h", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	empty, err := repo.Lookup(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormCustomerRepository_ExistsByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "KH001", "Lê Quang Hải")

	exists, err := repo.ExistsByCode(ctx, "kh001", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, "KH001", customer.ID)
	require.NoError(t, err)
	assert.False(t, exists, "a customer never conflicts with itself")

	dup, err := partner.NewCustomer(partner.CustomerProfile{Code: "KH001", Name: "Khác"})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
}

func TestGormCustomerRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "KH001", "Lê Quang Hải")
	other := seedCustomer(t, db, "KH002", "Phạm Minh Châu")
	c := seedContract(t, db, customer.ID, "HD-001", contract.ServiceTypeTrademark)
	seedSchedule(t, db, c)
	kept := seedContract(t, db, other.ID, "HD-002", contract.ServiceTypeCopyright)

	require.NoError(t, repo.Delete(ctx, customer.ID))

	_, err := repo.FindByID(ctx, customer.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var contracts, installments int64
	require.NoError(t, db.Model(&models.ContractModel{}).Count(&contracts).Error)
	require.NoError(t, db.Model(&models.InstallmentModel{}).Count(&installments).Error)
	assert.Equal(t, int64(1), contracts)
	assert.Equal(t, int64(0), installments)

	_, err = NewGormContractRepository(db).FindByID(ctx, kept.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), shared.ErrNotFound)
}
