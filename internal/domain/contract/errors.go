package contract

import (
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Error codes specific to the contract context
const (
	CodeAlreadyPaid       = "ALREADY_PAID"
	CodeNotInstallment    = "NOT_INSTALLMENT_CONTRACT"
	CodeDuplicateContract = "DUPLICATE_CONTRACT_NO"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeOverpayment       = "OVERPAYMENT"
)

var (
	// ErrAlreadyPaid is returned when marking an installment that is already settled
	ErrAlreadyPaid = shared.NewDomainError(CodeAlreadyPaid, "Installment is already fully paid")

	// ErrNotInstallmentContract is returned when a schedule is requested for a full-payment contract
	ErrNotInstallmentContract = shared.NewDomainError(CodeNotInstallment, "Contract is not paid in installments")

	// ErrDuplicateContractNo is returned when contract_no is already used
	ErrDuplicateContractNo = shared.NewDomainError(CodeDuplicateContract, "Contract number already exists").WithCause(shared.ErrAlreadyExists)

	// ErrInvalidAmount is returned for payment and installment amounts that are not a positive whole number of dong
	ErrInvalidAmount = shared.NewDomainError(CodeInvalidAmount, "Amount must be a positive whole number of dong")

	// ErrOverpayment is returned when a payment exceeds the outstanding balance of its installment
	ErrOverpayment = shared.NewDomainError(CodeOverpayment, "Amount exceeds the outstanding balance")
)

// ValidateAmount accepts positive whole-dong amounts
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !isWhole(amount) {
		return ErrInvalidAmount
	}
	return nil
}
