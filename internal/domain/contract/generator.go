package contract

import (
	"time"

	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// GenerateInstallments builds the payment schedule of an installment contract.
//
// The contract value is split evenly into InstallmentCount whole-dong parts,
// the rounding remainder landing on the last one. Installment i (0-based) is
// due today + i*IntervalDays. The prepaid amount is seeded into installment 1;
// any excess over its amount flows into the following installments so that
// no installment is ever paid beyond its amount.
//
// Replacing an existing schedule is the caller's job (delete, then insert).
func GenerateInstallments(c *Contract, today time.Time) ([]*PaymentInstallment, error) {
	if !c.IsInstallment() {
		return nil, ErrNotInstallmentContract
	}
	n := c.InstallmentCount
	if n < 1 {
		return nil, shared.NewValidationError("number_of_installments", "must be at least 1 for installment contracts")
	}

	value := valueobject.NewMoneyVND(c.ContractValue)
	parts, err := value.Split(n, valueobject.VND.MinorUnits())
	if err != nil {
		return nil, err
	}

	start := DateOnly(today)
	prepaidLeft := c.PrepaidAmount
	schedule := make([]*PaymentInstallment, 0, n)

	for i := range n {
		due := start.AddDate(0, 0, i*c.IntervalDays)
		inst := &PaymentInstallment{
			BaseEntity:    shared.NewBaseEntity(),
			ContractID:    c.ID,
			InstallmentNo: i + 1,
			Amount:        parts[i].Amount(),
			PaidAmount:    decimal.Zero,
			DueDate:       &due,
			Notes:         Label(i+1, n),
		}

		if prepaidLeft.IsPositive() {
			seed := decimal.Min(prepaidLeft, inst.Amount)
			inst.PaidAmount = seed
			prepaidLeft = prepaidLeft.Sub(seed)
		}
		inst.refreshPaidState(start)

		schedule = append(schedule, inst)
	}

	return schedule, nil
}
