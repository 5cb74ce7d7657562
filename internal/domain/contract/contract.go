package contract

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ServiceType is the kind of legal service a contract covers
type ServiceType string

const (
	ServiceTypeTrademark            ServiceType = "nhanhieu"
	ServiceTypeCopyright            ServiceType = "banquyen"
	ServiceTypeBusinessRegistration ServiceType = "dkkd"
	ServiceTypeInvestment           ServiceType = "dautu"
	ServiceTypeOther                ServiceType = "khac"
)

// IsValid checks if the service type is a known value
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeTrademark, ServiceTypeCopyright, ServiceTypeBusinessRegistration,
		ServiceTypeInvestment, ServiceTypeOther:
		return true
	}
	return false
}

// AllowsMultipleDetails reports whether several detail records may hang off one contract
func (t ServiceType) AllowsMultipleDetails() bool {
	return t == ServiceTypeTrademark || t == ServiceTypeCopyright
}

// PaymentType is how the customer settles the contract value
type PaymentType string

const (
	PaymentTypeFull        PaymentType = "full"
	PaymentTypeInstallment PaymentType = "installment"
)

// IsValid checks if the payment type is a known value
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeFull || t == PaymentTypeInstallment
}

// Status represents the processing status of a contract
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

const (
	// DefaultIntervalDays is used when an installment contract gives no interval
	DefaultIntervalDays = 30
	// MaxInstallments caps the size of a generated schedule
	MaxInstallments = 120
)

const maxContractNoLen = 50

// Terms are the inputs a contract is opened with
type Terms struct {
	ContractNo       string
	CustomerID       uuid.UUID
	ServiceType      ServiceType
	ContractValue    decimal.Decimal
	PaymentType      PaymentType
	PrepaidAmount    decimal.Decimal
	InstallmentCount int
	IntervalDays     int
	SignedDate       *time.Time
	Notes            string
	CreatedBy        *uuid.UUID
}

// Contract is the aggregate root of the payment lifecycle.
// Paid and remaining amounts are never stored on it; see Summarize.
type Contract struct {
	shared.BaseAggregateRoot
	ContractNo       string
	CustomerID       uuid.UUID
	ServiceType      ServiceType
	ContractValue    decimal.Decimal
	PaymentType      PaymentType
	PrepaidAmount    decimal.Decimal
	InstallmentCount int
	IntervalDays     int
	Status           Status
	SignedDate       *time.Time
	Notes            string
	CreatedBy        *uuid.UUID
}

// NewContract validates the terms and opens a contract.
// Full-payment contracts start completed, installment contracts start processing.
func NewContract(t Terms) (*Contract, error) {
	t.ContractNo = strings.TrimSpace(t.ContractNo)
	if t.PaymentType == PaymentTypeInstallment && t.IntervalDays == 0 {
		t.IntervalDays = DefaultIntervalDays
	}
	if t.PaymentType == PaymentTypeFull {
		t.InstallmentCount = 1
		if t.IntervalDays == 0 {
			t.IntervalDays = DefaultIntervalDays
		}
	}

	c := &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNo:        t.ContractNo,
		CustomerID:        t.CustomerID,
		ServiceType:       t.ServiceType,
		ContractValue:     t.ContractValue,
		PaymentType:       t.PaymentType,
		PrepaidAmount:     t.PrepaidAmount,
		InstallmentCount:  t.InstallmentCount,
		IntervalDays:      t.IntervalDays,
		SignedDate:        t.SignedDate,
		Notes:             t.Notes,
		CreatedBy:         t.CreatedBy,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.Status = StatusProcessing
	if c.PaymentType == PaymentTypeFull {
		c.Status = StatusCompleted
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))
	return c, nil
}

// Validate checks every field invariant and collects field-tagged failures
func (c *Contract) Validate() error {
	var errs shared.ValidationErrors

	switch {
	case c.ContractNo == "":
		errs.Add("contract_no", "is required")
	case utf8.RuneCountInString(c.ContractNo) > maxContractNoLen:
		errs.Add("contract_no", "cannot exceed 50 characters")
	}
	if c.CustomerID == uuid.Nil {
		errs.Add("customer_id", "is required")
	}
	if !c.ServiceType.IsValid() {
		errs.Add("service_type", "must be one of nhanhieu, banquyen, dkkd, dautu, khac")
	}
	if !c.PaymentType.IsValid() {
		errs.Add("payment_type", "must be full or installment")
	}

	switch {
	case c.ContractValue.IsNegative():
		errs.Add("contract_value", "cannot be negative")
	case !isWhole(c.ContractValue):
		errs.Add("contract_value", "must be a whole amount")
	}

	switch {
	case c.PrepaidAmount.IsNegative():
		errs.Add("prepaid_amount", "cannot be negative")
	case !isWhole(c.PrepaidAmount):
		errs.Add("prepaid_amount", "must be a whole amount")
	case c.PrepaidAmount.GreaterThan(c.ContractValue):
		errs.Add("prepaid_amount", "cannot exceed the contract value")
	}

	if c.PaymentType == PaymentTypeInstallment {
		switch {
		case c.InstallmentCount < 1:
			errs.Add("number_of_installments", "must be at least 1 for installment contracts")
		case c.InstallmentCount > MaxInstallments:
			errs.Add("number_of_installments", "cannot exceed 120")
		case c.ContractValue.LessThan(decimal.NewFromInt(int64(c.InstallmentCount))):
			errs.Add("contract_value", "must cover at least one dong per installment")
		}
		if c.IntervalDays < 1 {
			errs.Add("installment_interval_days", "must be at least 1")
		}
	}

	if c.Status != "" && !c.Status.IsValid() {
		errs.Add("status", "unknown status")
	}

	return errs.Err()
}

// IsInstallment reports whether the contract is paid on a schedule
func (c *Contract) IsInstallment() bool {
	return c.PaymentType == PaymentTypeInstallment
}

// IsPaused reports whether the contract was manually paused
func (c *Contract) IsPaused() bool {
	return c.Status == StatusPaused
}

// RefreshStatus applies the derived status for the given summary.
// Returns true when the status changed.
func (c *Contract) RefreshStatus(s Summary) bool {
	next := DeriveStatus(c, s)
	if next == c.Status {
		return false
	}
	c.setStatus(next)
	if next == StatusCompleted {
		c.AddDomainEvent(NewContractCompletedEvent(c, s))
	}
	return true
}

// Pause stops the contract; the automatic status rule leaves paused contracts alone
func (c *Contract) Pause() error {
	if c.Status == StatusPaused {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Contract is already paused")
	}
	c.setStatus(StatusPaused)
	return nil
}

// Resume lifts a pause and re-derives the status from the money collected
func (c *Contract) Resume(s Summary) error {
	if c.Status != StatusPaused {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Only a paused contract can be resumed")
	}
	c.Status = StatusPending
	next := DeriveStatus(c, s)
	c.Status = StatusPaused
	c.setStatus(next)
	return nil
}

// UpdateInfo edits the free fields. Money terms are locked after creation.
func (c *Contract) UpdateInfo(signedDate *time.Time, notes string) {
	c.SignedDate = signedDate
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractUpdatedEvent(c))
}

func (c *Contract) setStatus(next Status) {
	old := c.Status
	c.Status = next
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractStatusChangedEvent(c, old, next))
}

func isWhole(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}
