package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
)

// ContractFilter narrows contract listings
type ContractFilter struct {
	shared.Filter
	Status      Status
	ServiceType ServiceType
	CustomerID  *uuid.UUID
	// Query matches contract_no, customer code or customer name
	Query string
}

// DefaultContractFilter returns a filter ordered newest first
func DefaultContractFilter() ContractFilter {
	return ContractFilter{Filter: shared.DefaultFilter()}
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByID finds a contract by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForUpdate finds a contract and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByContractNo finds a contract by its unique number
	FindByContractNo(ctx context.Context, contractNo string) (*Contract, error)

	// ExistsByContractNo checks whether the number is taken
	ExistsByContractNo(ctx context.Context, contractNo string) (bool, error)

	// FindAll lists contracts matching the filter
	FindAll(ctx context.Context, filter ContractFilter) ([]Contract, error)

	// Count counts contracts matching the filter
	Count(ctx context.Context, filter ContractFilter) (int64, error)

	// FindByCustomer lists all contracts of a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, c *Contract) error

	// Delete deletes a contract with its installments, logs, details and history
	Delete(ctx context.Context, id uuid.UUID) error
}

// InstallmentRepository defines the interface for installment persistence
type InstallmentRepository interface {
	// FindByID finds an installment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentInstallment, error)

	// FindByIDForUpdate finds an installment and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PaymentInstallment, error)

	// FindByContract returns the schedule of a contract ordered by installment number
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]PaymentInstallment, error)

	// Save updates a single installment
	Save(ctx context.Context, inst *PaymentInstallment) error

	// CreateBatch inserts a full schedule
	CreateBatch(ctx context.Context, items []*PaymentInstallment) error

	// DeleteByContract removes the schedule of a contract (and the logs hanging off it)
	DeleteByContract(ctx context.Context, contractID uuid.UUID) error
}

// PaymentLogRepository defines the interface for the payment audit trail
type PaymentLogRepository interface {
	// FindByID finds a log entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentLog, error)

	// FindByContract returns a contract's log entries, oldest first
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]PaymentLog, error)

	// FindByInstallment returns an installment's log entries, oldest first
	FindByInstallment(ctx context.Context, installmentID uuid.UUID) ([]PaymentLog, error)

	// Create appends a new log entry
	Create(ctx context.Context, log *PaymentLog) error

	// UpdateInvoiceFlag persists the invoice-exported flag of an entry
	UpdateInvoiceFlag(ctx context.Context, log *PaymentLog) error
}

// HistoryRepository defines the interface for contract history rows
type HistoryRepository interface {
	// Create appends a history row
	Create(ctx context.Context, h *History) error

	// FindByContract returns a contract's history, newest first
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]History, error)
}

// ServiceDetailRepository persists the service detail records of contracts
type ServiceDetailRepository interface {
	// Load returns every detail record of a contract
	Load(ctx context.Context, contractID uuid.UUID) (*ServiceDetails, error)

	// Replace deletes the contract's current details and stores the given ones
	Replace(ctx context.Context, contractID uuid.UUID, details *ServiceDetails) error
}
