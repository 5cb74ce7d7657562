package contract

import (
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeContract = "Contract"

// Event type constants
const (
	EventTypeContractCreated       = "ContractCreated"
	EventTypeContractUpdated       = "ContractUpdated"
	EventTypeContractStatusChanged = "ContractStatusChanged"
	EventTypeContractCompleted     = "ContractCompleted"
	EventTypePaymentApplied        = "PaymentApplied"
)

// ContractCreatedEvent is published when a contract is opened
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractNo    string          `json:"contract_no"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	ServiceType   ServiceType     `json:"service_type"`
	PaymentType   PaymentType     `json:"payment_type"`
	ContractValue decimal.Decimal `json:"contract_value"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID),
		ContractNo:      c.ContractNo,
		CustomerID:      c.CustomerID,
		ServiceType:     c.ServiceType,
		PaymentType:     c.PaymentType,
		ContractValue:   c.ContractValue,
	}
}

// ContractUpdatedEvent is published when the free fields of a contract change
type ContractUpdatedEvent struct {
	shared.BaseDomainEvent
	ContractNo string `json:"contract_no"`
}

// NewContractUpdatedEvent creates a new ContractUpdatedEvent
func NewContractUpdatedEvent(c *Contract) *ContractUpdatedEvent {
	return &ContractUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractUpdated, AggregateTypeContract, c.ID),
		ContractNo:      c.ContractNo,
	}
}

// ContractStatusChangedEvent is published on every status transition
type ContractStatusChangedEvent struct {
	shared.BaseDomainEvent
	ContractNo string `json:"contract_no"`
	OldStatus  Status `json:"old_status"`
	NewStatus  Status `json:"new_status"`
}

// NewContractStatusChangedEvent creates a new ContractStatusChangedEvent
func NewContractStatusChangedEvent(c *Contract, oldStatus, newStatus Status) *ContractStatusChangedEvent {
	return &ContractStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractStatusChanged, AggregateTypeContract, c.ID),
		ContractNo:      c.ContractNo,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ContractCompletedEvent is published when a contract becomes completed
type ContractCompletedEvent struct {
	shared.BaseDomainEvent
	ContractNo string          `json:"contract_no"`
	CustomerID uuid.UUID       `json:"customer_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
}

// NewContractCompletedEvent creates a new ContractCompletedEvent
func NewContractCompletedEvent(c *Contract, s Summary) *ContractCompletedEvent {
	return &ContractCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCompleted, AggregateTypeContract, c.ID),
		ContractNo:      c.ContractNo,
		CustomerID:      c.CustomerID,
		TotalPaid:       s.TotalPaid,
	}
}

// PaymentAppliedEvent is published after money is booked against an installment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	ContractNo    string          `json:"contract_no"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	PaymentLogID  uuid.UUID       `json:"payment_log_id"`
	Amount        decimal.Decimal `json:"amount"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(c *Contract, log *PaymentLog, s Summary) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeContract, c.ID),
		ContractNo:      c.ContractNo,
		InstallmentID:   log.InstallmentID,
		PaymentLogID:    log.ID,
		Amount:          log.AmountPaid,
		Remaining:       s.RemainingAmount,
	}
}
