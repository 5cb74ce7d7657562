package contract

import (
	"context"

	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to contract repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the contract repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - ContractRepo: the Contract aggregate root; status is the only field written after creation.
//   - InstallmentRepo: installments are children of a contract but are stored and locked
//     individually so that a payment only touches one row.
//   - PaymentLogRepo and HistoryRepo are append-only.
//   - CustomerRepo is here because opening a contract moves its customer to pending.
type TransactionalRepositories interface {
	// ContractRepo returns the contract repository scoped to the current transaction
	ContractRepo() contract.ContractRepository
	// InstallmentRepo returns the installment repository scoped to the current transaction
	InstallmentRepo() contract.InstallmentRepository
	// PaymentLogRepo returns the payment log repository scoped to the current transaction
	PaymentLogRepo() contract.PaymentLogRepository
	// HistoryRepo returns the history repository scoped to the current transaction
	HistoryRepo() contract.HistoryRepository
	// ServiceDetailRepo returns the service detail repository scoped to the current transaction
	ServiceDetailRepo() contract.ServiceDetailRepository
	// CustomerRepo returns the customer repository scoped to the current transaction
	CustomerRepo() partner.CustomerRepository
}

// Repositories is a plain bundle of repositories, used outside transactions.
type Repositories struct {
	Contracts      contract.ContractRepository
	Installments   contract.InstallmentRepository
	PaymentLogs    contract.PaymentLogRepository
	Histories      contract.HistoryRepository
	ServiceDetails contract.ServiceDetailRepository
	Customers      partner.CustomerRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ContractRepo returns the contract repository.
func (s *NoOpTransactionScope) ContractRepo() contract.ContractRepository {
	return s.repos.Contracts
}

// InstallmentRepo returns the installment repository.
func (s *NoOpTransactionScope) InstallmentRepo() contract.InstallmentRepository {
	return s.repos.Installments
}

// PaymentLogRepo returns the payment log repository.
func (s *NoOpTransactionScope) PaymentLogRepo() contract.PaymentLogRepository {
	return s.repos.PaymentLogs
}

// HistoryRepo returns the history repository.
func (s *NoOpTransactionScope) HistoryRepo() contract.HistoryRepository {
	return s.repos.Histories
}

// ServiceDetailRepo returns the service detail repository.
func (s *NoOpTransactionScope) ServiceDetailRepo() contract.ServiceDetailRepository {
	return s.repos.ServiceDetails
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.repos.Customers
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
