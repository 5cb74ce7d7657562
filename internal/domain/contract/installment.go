package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentInstallment is one scheduled obligation of a contract.
// The paid flag is not stored state: IsPaid derives it from the amounts.
type PaymentInstallment struct {
	shared.BaseEntity
	ContractID    uuid.UUID
	InstallmentNo int
	Amount        decimal.Decimal
	PaidAmount    decimal.Decimal
	DueDate       *time.Time
	PaidDate      *time.Time
	Notes         string
}

// IsPaid reports paid_amount >= amount
func (i *PaymentInstallment) IsPaid() bool {
	return i.PaidAmount.GreaterThanOrEqual(i.Amount)
}

// Outstanding returns the amount still owed, never negative
func (i *PaymentInstallment) Outstanding() decimal.Decimal {
	out := i.Amount.Sub(i.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// IsOverdue reports an unpaid installment whose due date is before today
func (i *PaymentInstallment) IsOverdue(today time.Time) bool {
	if i.IsPaid() || i.DueDate == nil {
		return false
	}
	return i.DueDate.Before(DateOnly(today))
}

// ApplyPayment adds amount to paid_amount.
// The amount must be a positive whole number of dong no larger than the outstanding balance.
func (i *PaymentInstallment) ApplyPayment(amount decimal.Decimal, paidAt time.Time) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if outstanding := i.Outstanding(); amount.GreaterThan(outstanding) {
		return shared.NewDomainError(CodeOverpayment,
			fmt.Sprintf("Amount exceeds the outstanding balance of %s", outstanding.String()))
	}

	i.PaidAmount = i.PaidAmount.Add(amount)
	i.refreshPaidState(paidAt)
	return nil
}

// MarkPaid settles the installment in one step and returns the delta actually applied
func (i *PaymentInstallment) MarkPaid(paidAt time.Time) (decimal.Decimal, error) {
	if i.IsPaid() {
		return decimal.Zero, ErrAlreadyPaid
	}

	delta := i.Amount.Sub(i.PaidAmount)
	i.PaidAmount = i.Amount
	i.refreshPaidState(paidAt)
	return delta, nil
}

// AdjustAmount changes the face amount; it may not drop below what was already paid.
// Callers editing a live schedule go through AdjustInSchedule.
func (i *PaymentInstallment) AdjustAmount(amount decimal.Decimal, now time.Time) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount.LessThan(i.PaidAmount) {
		return shared.NewValidationError("amount", "cannot be lower than the amount already paid")
	}

	i.Amount = amount
	i.refreshPaidState(now)
	return nil
}

// AdjustInSchedule sets the amount of target and moves the difference onto the
// last other unpaid installment, so the schedule keeps adding up to value.
// It returns the installment that absorbed the difference, nil when the amount
// is unchanged. Nothing is modified when an error is returned.
func AdjustInSchedule(schedule []*PaymentInstallment, target *PaymentInstallment, amount, value decimal.Decimal, now time.Time) (*PaymentInstallment, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if amount.LessThan(target.PaidAmount) {
		return nil, shared.NewValidationError("amount", "cannot be lower than the amount already paid")
	}

	total := decimal.Zero
	var absorber *PaymentInstallment
	for _, inst := range schedule {
		total = total.Add(inst.Amount)
		if inst.ID != target.ID && !inst.IsPaid() {
			absorber = inst
		}
	}
	if !total.Equal(value) {
		return nil, shared.NewValidationError("amount",
			fmt.Sprintf("installments add up to %s instead of the contract value %s; regenerate the schedule", total, value))
	}

	diff := amount.Sub(target.Amount)
	if diff.IsZero() {
		return nil, nil
	}
	if absorber == nil {
		return nil, shared.NewValidationError("amount", "no other unpaid installment can absorb the difference")
	}
	rest := absorber.Amount.Sub(diff)
	if !rest.IsPositive() || rest.LessThan(absorber.PaidAmount) {
		return nil, shared.NewValidationError("amount",
			fmt.Sprintf("would leave installment %d with %s", absorber.InstallmentNo, rest))
	}

	target.Amount = amount
	target.refreshPaidState(now)
	absorber.Amount = rest
	absorber.refreshPaidState(now)
	return absorber, nil
}

// Reschedule moves the due date and replaces the notes
func (i *PaymentInstallment) Reschedule(dueDate *time.Time, notes string) {
	if dueDate != nil {
		d := DateOnly(*dueDate)
		dueDate = &d
	}
	i.DueDate = dueDate
	i.Notes = notes
	i.Touch()
}

// refreshPaidState keeps paid_date in step with IsPaid
func (i *PaymentInstallment) refreshPaidState(at time.Time) {
	if i.IsPaid() {
		if i.PaidDate == nil {
			d := DateOnly(at)
			i.PaidDate = &d
		}
	} else {
		i.PaidDate = nil
	}
	i.Touch()
}

// Label returns the display label "Đợt i/N"
func Label(no, total int) string {
	return fmt.Sprintf("Đợt %d/%d", no, total)
}

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
