package contract

import (
	"github.com/ipshield/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Summary holds the money figures of a contract, derived on demand from its installments
type Summary struct {
	ContractValue    decimal.Decimal `json:"contract_value"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	PaymentProgress  decimal.Decimal `json:"payment_progress"`
	IsFullyPaid      bool            `json:"is_fully_paid"`
	InstallmentCount int             `json:"installment_count"`
	PaidCount        int             `json:"paid_count"`
}

// Summarize derives the contract money figures.
//
//	total_paid       = sum of paid_amount (0 without installments)
//	remaining_amount = contract_value - total_paid (negative when overpaid)
//	payment_progress = round(total_paid / contract_value * 100, 2), 0 when value is 0
//	is_fully_paid    = total_paid >= contract_value
func Summarize(contractValue decimal.Decimal, installments []PaymentInstallment) Summary {
	paid := valueobject.Zero(valueobject.VND)
	paidCount := 0
	for i := range installments {
		paid, _ = paid.Add(valueobject.NewMoneyVND(installments[i].PaidAmount))
		if installments[i].IsPaid() {
			paidCount++
		}
	}

	value := valueobject.NewMoneyVND(contractValue)
	remaining, _ := value.Subtract(paid)

	return Summary{
		ContractValue:    contractValue,
		TotalPaid:        paid.Amount(),
		RemainingAmount:  remaining.Amount(),
		PaymentProgress:  paid.PercentOf(value),
		IsFullyPaid:      paid.Amount().GreaterThanOrEqual(contractValue),
		InstallmentCount: len(installments),
		PaidCount:        paidCount,
	}
}

// DeriveStatus computes the status a contract should carry.
// Paused is never overridden; full-payment contracts are always completed;
// installment contracts are completed exactly when nothing remains.
func DeriveStatus(c *Contract, s Summary) Status {
	switch {
	case c.Status == StatusPaused:
		return StatusPaused
	case c.PaymentType == PaymentTypeFull:
		return StatusCompleted
	case !s.RemainingAmount.IsPositive():
		return StatusCompleted
	default:
		return StatusProcessing
	}
}
