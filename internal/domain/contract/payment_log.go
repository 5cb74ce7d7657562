package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentLog is an append-only record of money received against an installment.
// The invoice flag is the only thing that may change after it is written.
type PaymentLog struct {
	ID                uuid.UUID
	ContractID        uuid.UUID
	InstallmentID     uuid.UUID
	AmountPaid        decimal.Decimal
	PaidAt            time.Time
	Notes             string
	InvoiceExported   bool
	InvoiceExportedAt *time.Time
	CreatedBy         *uuid.UUID
	CreatedAt         time.Time
}

// NewPaymentLog records amount applied to an installment at paidAt
func NewPaymentLog(inst *PaymentInstallment, amount decimal.Decimal, paidAt time.Time, notes string, createdBy *uuid.UUID) (*PaymentLog, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return &PaymentLog{
		ID:            uuid.New(),
		ContractID:    inst.ContractID,
		InstallmentID: inst.ID,
		AmountPaid:    amount,
		PaidAt:        paidAt,
		Notes:         notes,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}, nil
}

// MarkInvoiceExported flips the invoice flag once
func (l *PaymentLog) MarkInvoiceExported(now time.Time) error {
	if l.InvoiceExported {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Invoice was already exported for this payment")
	}
	l.InvoiceExported = true
	l.InvoiceExportedAt = &now
	return nil
}

// SumPaymentLogs totals the amounts of the given logs
func SumPaymentLogs(logs []PaymentLog) decimal.Decimal {
	total := decimal.Zero
	for _, l := range logs {
		total = total.Add(l.AmountPaid)
	}
	return total
}
