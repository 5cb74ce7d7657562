package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps the in-memory database alive for the whole test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockDB returns a GORM handle on the postgres dialect backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func seedCustomer(t *testing.T, db *gorm.DB, code, name string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(partner.CustomerProfile{
		Code:  code,
		Name:  name,
		Type:  partner.CustomerTypeCompany,
		Phone: "0901234567",
		Email: "lienhe@" + code + ".vn",
	})
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(context.Background(), c))
	return c
}

func seedContract(t *testing.T, db *gorm.DB, customerID uuid.UUID, no string, serviceType contract.ServiceType) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract(contract.Terms{
		ContractNo:       no,
		CustomerID:       customerID,
		ServiceType:      serviceType,
		ContractValue:    decimal.NewFromInt(30_000_000),
		PaymentType:      contract.PaymentTypeInstallment,
		PrepaidAmount:    decimal.NewFromInt(5_000_000),
		InstallmentCount: 3,
		IntervalDays:     30,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormContractRepository(db).Save(context.Background(), c))
	return c
}

func seedSchedule(t *testing.T, db *gorm.DB, c *contract.Contract) []*contract.PaymentInstallment {
	t.Helper()
	items, err := contract.GenerateInstallments(c, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, NewGormInstallmentRepository(db).CreateBatch(context.Background(), items))
	return items
}
