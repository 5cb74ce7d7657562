package persistence

import (
	"context"

	appcontract "github.com/ipshield/backend/internal/application/contract"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcontract.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ContractRepo returns the contract repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ContractRepo() contract.ContractRepository {
	return NewGormContractRepository(r.tx)
}

// InstallmentRepo returns the installment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InstallmentRepo() contract.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

// PaymentLogRepo returns the payment log repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentLogRepo() contract.PaymentLogRepository {
	return NewGormPaymentLogRepository(r.tx)
}

// HistoryRepo returns the history repository scoped to the current transaction.
func (r *gormTransactionalRepositories) HistoryRepo() contract.HistoryRepository {
	return NewGormHistoryRepository(r.tx)
}

// ServiceDetailRepo returns the service detail repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ServiceDetailRepo() contract.ServiceDetailRepository {
	return NewGormServiceDetailRepository(r.tx)
}

// CustomerRepo returns the customer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// NewContractRepositories bundles the non-transactional repositories for the contract service
func NewContractRepositories(db *gorm.DB) appcontract.Repositories {
	return appcontract.Repositories{
		Contracts:      NewGormContractRepository(db),
		Installments:   NewGormInstallmentRepository(db),
		PaymentLogs:    NewGormPaymentLogRepository(db),
		Histories:      NewGormHistoryRepository(db),
		ServiceDetails: NewGormServiceDetailRepository(db),
		Customers:      NewGormCustomerRepository(db),
	}
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcontract.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcontract.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
