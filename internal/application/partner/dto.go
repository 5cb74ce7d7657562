package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code     string `json:"customer_code" binding:"required,min=1,max=50"`
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Type     string `json:"customer_type" binding:"omitempty,oneof=personal company"`
	Address  string `json:"address" binding:"max=500"`
	Phone    string `json:"phone" binding:"omitempty,numeric,max=20"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	CCCD     string `json:"cccd" binding:"omitempty,numeric,max=20"`
	TaxCode  string `json:"tax_code" binding:"omitempty,numeric,max=20"`
	Manager  string `json:"manager" binding:"max=255"`
	Position string `json:"position" binding:"max=255"`
	Note     string `json:"note"`
}

// Profile converts the request into the domain profile
func (r CreateCustomerRequest) Profile() partner.CustomerProfile {
	return partner.CustomerProfile{
		Code:     r.Code,
		Name:     r.Name,
		Type:     partner.CustomerType(r.Type),
		Address:  r.Address,
		Phone:    r.Phone,
		Email:    r.Email,
		CCCD:     r.CCCD,
		TaxCode:  r.TaxCode,
		Manager:  r.Manager,
		Position: r.Position,
		Note:     r.Note,
	}
}

// UpdateCustomerRequest represents a request to update a customer.
// The customer is edited as a whole, as in the intake form.
type UpdateCustomerRequest = CreateCustomerRequest

// ChangeStatusRequest represents a request to change a customer's status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved pending completed"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"q"`
	Status   string `form:"status" binding:"omitempty,oneof=approved pending completed"`
	Type     string `form:"customer_type" binding:"omitempty,oneof=personal company"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=customer_code name created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"customer_code"`
	Name      string    `json:"name"`
	Type      string    `json:"customer_type"`
	Status    string    `json:"status"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CCCD      string    `json:"cccd"`
	TaxCode   string    `json:"tax_code"`
	Manager   string    `json:"manager"`
	Position  string    `json:"position"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// CustomerLookupResponse is the compact form used by the contract intake form
type CustomerLookupResponse struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"customer_code"`
	Name    string    `json:"name"`
	Display string    `json:"display"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`
}

// CustomerContractResponse summarises one contract on the customer detail page
type CustomerContractResponse struct {
	ID            uuid.UUID       `json:"id"`
	ContractNo    string          `json:"contract_no"`
	ServiceType   string          `json:"service_type"`
	PaymentType   string          `json:"payment_type"`
	ContractValue decimal.Decimal `json:"contract_value"`
	Status        string          `json:"status"`
	SignedDate    *time.Time      `json:"signed_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CustomerDetailResponse is a customer together with its contracts
type CustomerDetailResponse struct {
	CustomerResponse
	Contracts []CustomerContractResponse `json:"contracts"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		Status:    string(c.Status),
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		CCCD:      c.CCCD,
		TaxCode:   c.TaxCode,
		Manager:   c.Manager,
		Position:  c.Position,
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// ToCustomerResponses converts a slice of domain Customers to responses
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// ToCustomerLookupResponses converts customers to their compact lookup form
func ToCustomerLookupResponses(customers []partner.Customer) []CustomerLookupResponse {
	responses := make([]CustomerLookupResponse, len(customers))
	for i := range customers {
		c := &customers[i]
		responses[i] = CustomerLookupResponse{
			ID:      c.ID,
			Code:    c.Code,
			Name:    c.Name,
			Display: c.DisplayName(),
			Phone:   c.Phone,
			Email:   c.Email,
		}
	}
	return responses
}

func toCustomerContractResponses(contracts []contract.Contract) []CustomerContractResponse {
	responses := make([]CustomerContractResponse, len(contracts))
	for i := range contracts {
		c := &contracts[i]
		responses[i] = CustomerContractResponse{
			ID:            c.ID,
			ContractNo:    c.ContractNo,
			ServiceType:   string(c.ServiceType),
			PaymentType:   string(c.PaymentType),
			ContractValue: c.ContractValue,
			Status:        string(c.Status),
			SignedDate:    c.SignedDate,
			CreatedAt:     c.CreatedAt,
		}
	}
	return responses
}
