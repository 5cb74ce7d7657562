package contract

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format of calendar dates
const dateLayout = "2006-01-02"

// Actor identifies the staff user performing an operation
type Actor struct {
	UserID   *uuid.UUID
	Username string
}

// =============================================================================
// Service detail DTOs
// =============================================================================

// TrademarkInput is one trademark filing in a contract request
type TrademarkInput struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	Applicant       string     `json:"applicant" binding:"required,max=255"`
	Address         string     `json:"address" binding:"required"`
	Email           string     `json:"email" binding:"required,email"`
	Phone           string     `json:"phone" binding:"required,numeric,max=20"`
	ApplicationNo   string     `json:"app_no" binding:"required,max=100"`
	FilingDate      string     `json:"filing_date" binding:"required,datetime=2006-01-02"`
	TrademarkName   string     `json:"trademark_name" binding:"required,max=255"`
	Classification  string     `json:"classification" binding:"required"`
	PublicationDate string     `json:"publication_date" binding:"omitempty,datetime=2006-01-02"`
	DecisionDate    string     `json:"decision_date" binding:"omitempty,datetime=2006-01-02"`
}

// CopyrightInput is one copyright work in a contract request
type CopyrightInput struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	WorkName      string     `json:"work_name" binding:"required,max=255"`
	Author        string     `json:"author" binding:"required,max=255"`
	Owner         string     `json:"owner" binding:"required,max=255"`
	OwnerAddress  string     `json:"owner_address" binding:"required"`
	WorkType      string     `json:"type" binding:"required,max=100"`
	CertificateNo string     `json:"certificate_no" binding:"required,max=100"`
}

// BusinessRegistrationInput is the company registration in a contract request
type BusinessRegistrationInput struct {
	CompanyName         string `json:"company_name" binding:"required,max=255"`
	BusinessType        string `json:"business_type" binding:"required,max=100"`
	TaxCode             string `json:"tax_code" binding:"omitempty,numeric,max=20"`
	Address             string `json:"address" binding:"required"`
	Email               string `json:"email" binding:"required,email"`
	Phone               string `json:"phone" binding:"required,numeric,max=20"`
	LegalRepresentative string `json:"legal_representative" binding:"required,max=255"`
	Position            string `json:"position" binding:"required,max=255"`
	CharterCapital      string `json:"charter_capital" binding:"required,max=100"`
}

// InvestmentInput is the investment project in a contract request
type InvestmentInput struct {
	ProjectCode  string `json:"project_code" binding:"required,max=100"`
	Investor     string `json:"investor" binding:"required,max=255"`
	ProjectName  string `json:"project_name" binding:"required,max=255"`
	Objective    string `json:"objective" binding:"required"`
	Address      string `json:"address" binding:"required"`
	TotalCapital string `json:"total_capital" binding:"required,max=100"`
}

// OtherServiceInput is the free-form service in a contract request
type OtherServiceInput struct {
	Description         string `json:"description" binding:"required"`
	LegalRepresentative string `json:"legal_representative" binding:"required,max=255"`
	Position            string `json:"position" binding:"required,max=255"`
	Phone               string `json:"phone" binding:"required,numeric,max=20"`
	Email               string `json:"email" binding:"required,email"`
}

// ServiceDetailsInput carries the detail records of a contract request
type ServiceDetailsInput struct {
	Trademarks           []TrademarkInput           `json:"trademarks,omitempty" binding:"omitempty,dive"`
	Copyrights           []CopyrightInput           `json:"copyrights,omitempty" binding:"omitempty,dive"`
	BusinessRegistration *BusinessRegistrationInput `json:"business_registration,omitempty"`
	Investment           *InvestmentInput           `json:"investment,omitempty"`
	Other                *OtherServiceInput         `json:"other_service,omitempty"`
}

// =============================================================================
// Contract requests
// =============================================================================

// CreateContractRequest represents a request to open a new contract
type CreateContractRequest struct {
	ContractNo       string           `json:"contract_no" binding:"required,max=50"`
	CustomerID       uuid.UUID        `json:"customer_id" binding:"required"`
	ServiceType      string           `json:"service_type" binding:"required,oneof=nhanhieu banquyen dkkd dautu khac"`
	ContractValue    decimal.Decimal  `json:"contract_value"`
	PaymentType      string           `json:"payment_type" binding:"required,oneof=full installment"`
	PrepaidAmount    *decimal.Decimal `json:"prepaid_amount"`
	InstallmentCount int              `json:"number_of_installments" binding:"min=0,max=120"`
	IntervalDays     int              `json:"installment_interval_days" binding:"min=0"`
	SignedDate       string           `json:"signed_date" binding:"omitempty,datetime=2006-01-02"`
	Notes            string           `json:"notes"`
	ServiceDetailsInput
}

// UpdateContractRequest edits the free fields and service details of a contract.
// Money terms cannot be changed after creation.
type UpdateContractRequest struct {
	SignedDate string `json:"signed_date" binding:"omitempty,datetime=2006-01-02"`
	Notes      string `json:"notes"`
	ServiceDetailsInput
}

// ContractListFilter represents filter options for contract listing and search
type ContractListFilter struct {
	Query       string `form:"q"`
	Status      string `form:"status" binding:"omitempty,oneof=pending processing completed paused"`
	ServiceType string `form:"service_type" binding:"omitempty,oneof=nhanhieu banquyen dkkd dautu khac"`
	CustomerID  string `form:"customer_id" binding:"omitempty,uuid"`
	Page        int    `form:"page" binding:"min=0"`
	PageSize    int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string `form:"order_by" binding:"omitempty,oneof=contract_no contract_value created_at signed_date"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ApplyPaymentRequest records money received against an installment
type ApplyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PaidAt *time.Time      `json:"paid_at"`
	Notes  string          `json:"notes" binding:"max=1000"`
	// IdempotencyKey is taken from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// UpdateInstallmentRequest adjusts the face amount or the schedule of one installment
type UpdateInstallmentRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	DueDate *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Notes   *string          `json:"notes"`
}

// =============================================================================
// Responses
// =============================================================================

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID               uuid.UUID       `json:"id"`
	ContractNo       string          `json:"contract_no"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerCode     string          `json:"customer_code,omitempty"`
	CustomerName     string          `json:"customer_name,omitempty"`
	ServiceType      string          `json:"service_type"`
	ContractValue    decimal.Decimal `json:"contract_value"`
	PaymentType      string          `json:"payment_type"`
	PrepaidAmount    decimal.Decimal `json:"prepaid_amount"`
	InstallmentCount int             `json:"number_of_installments"`
	IntervalDays     int             `json:"installment_interval_days"`
	Status           string          `json:"status"`
	SignedDate       *time.Time      `json:"signed_date,omitempty"`
	Notes            string          `json:"notes"`
	CreatedBy        *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	InstallmentNo int             `json:"installment_no"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	IsPaid        bool            `json:"is_paid"`
	IsOverdue     bool            `json:"is_overdue"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	Notes         string          `json:"notes"`
}

// PaymentLogResponse represents a payment log entry in API responses
type PaymentLogResponse struct {
	ID                uuid.UUID       `json:"id"`
	ContractID        uuid.UUID       `json:"contract_id"`
	InstallmentID     uuid.UUID       `json:"installment_id"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	PaidAt            time.Time       `json:"paid_at"`
	Notes             string          `json:"notes"`
	InvoiceExported   bool            `json:"invoice_exported"`
	InvoiceExportedAt *time.Time      `json:"invoice_exported_at,omitempty"`
	CreatedBy         *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// HistoryResponse represents a contract history row in API responses
type HistoryResponse struct {
	ID        uuid.UUID `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	OldData   string    `json:"old_data,omitempty"`
	NewData   string    `json:"new_data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryResponse is the derived money picture of a contract
type SummaryResponse struct {
	ContractID uuid.UUID `json:"contract_id"`
	Status     string    `json:"status"`
	contract.Summary
}

// PaymentResult is returned by the payment operations
type PaymentResult struct {
	Installment InstallmentResponse `json:"installment"`
	PaymentLog  *PaymentLogResponse `json:"payment_log"`
	Summary     SummaryResponse     `json:"summary"`
}

// ServiceDetailsResponse carries the detail records of a contract
type ServiceDetailsResponse struct {
	Trademarks           []contract.TrademarkService           `json:"trademarks,omitempty"`
	Copyrights           []contract.CopyrightService           `json:"copyrights,omitempty"`
	BusinessRegistration *contract.BusinessRegistrationService `json:"business_registration,omitempty"`
	Investment           *contract.InvestmentService           `json:"investment,omitempty"`
	Other                *contract.OtherService                `json:"other_service,omitempty"`
}

// ContractDetailResponse is the full contract page
type ContractDetailResponse struct {
	ContractResponse
	Installments   []InstallmentResponse  `json:"installments"`
	Summary        contract.Summary       `json:"summary"`
	ServiceDetails ServiceDetailsResponse `json:"service_details"`
	PaymentLogs    []PaymentLogResponse   `json:"payment_logs"`
	History        []HistoryResponse      `json:"history"`
}

// =============================================================================
// Conversions
// =============================================================================

// ToContractResponse converts a domain Contract to ContractResponse
func ToContractResponse(c *contract.Contract) ContractResponse {
	return ContractResponse{
		ID:               c.ID,
		ContractNo:       c.ContractNo,
		CustomerID:       c.CustomerID,
		ServiceType:      string(c.ServiceType),
		ContractValue:    c.ContractValue,
		PaymentType:      string(c.PaymentType),
		PrepaidAmount:    c.PrepaidAmount,
		InstallmentCount: c.InstallmentCount,
		IntervalDays:     c.IntervalDays,
		Status:           string(c.Status),
		SignedDate:       c.SignedDate,
		Notes:            c.Notes,
		CreatedBy:        c.CreatedBy,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}

// ToInstallmentResponse converts a domain installment to InstallmentResponse
func ToInstallmentResponse(i *contract.PaymentInstallment, today time.Time) InstallmentResponse {
	return InstallmentResponse{
		ID:            i.ID,
		ContractID:    i.ContractID,
		InstallmentNo: i.InstallmentNo,
		Amount:        i.Amount,
		PaidAmount:    i.PaidAmount,
		Outstanding:   i.Outstanding(),
		IsPaid:        i.IsPaid(),
		IsOverdue:     i.IsOverdue(today),
		DueDate:       i.DueDate,
		PaidDate:      i.PaidDate,
		Notes:         i.Notes,
	}
}

// ToInstallmentResponses converts installments to responses
func ToInstallmentResponses(items []contract.PaymentInstallment, today time.Time) []InstallmentResponse {
	responses := make([]InstallmentResponse, len(items))
	for i := range items {
		responses[i] = ToInstallmentResponse(&items[i], today)
	}
	return responses
}

// ToPaymentLogResponse converts a domain PaymentLog to PaymentLogResponse
func ToPaymentLogResponse(l *contract.PaymentLog) PaymentLogResponse {
	return PaymentLogResponse{
		ID:                l.ID,
		ContractID:        l.ContractID,
		InstallmentID:     l.InstallmentID,
		AmountPaid:        l.AmountPaid,
		PaidAt:            l.PaidAt,
		Notes:             l.Notes,
		InvoiceExported:   l.InvoiceExported,
		InvoiceExportedAt: l.InvoiceExportedAt,
		CreatedBy:         l.CreatedBy,
		CreatedAt:         l.CreatedAt,
	}
}

// ToPaymentLogResponses converts payment logs to responses
func ToPaymentLogResponses(logs []contract.PaymentLog) []PaymentLogResponse {
	responses := make([]PaymentLogResponse, len(logs))
	for i := range logs {
		responses[i] = ToPaymentLogResponse(&logs[i])
	}
	return responses
}

// ToHistoryResponses converts history rows to responses
func ToHistoryResponses(rows []contract.History) []HistoryResponse {
	responses := make([]HistoryResponse, len(rows))
	for i, h := range rows {
		responses[i] = HistoryResponse{
			ID:        h.ID,
			User:      h.User,
			Action:    string(h.Action),
			OldData:   h.OldData,
			NewData:   h.NewData,
			CreatedAt: h.CreatedAt,
		}
	}
	return responses
}

func toSummaryResponse(c *contract.Contract, s contract.Summary) SummaryResponse {
	return SummaryResponse{ContractID: c.ID, Status: string(c.Status), Summary: s}
}

func toServiceDetailsResponse(d *contract.ServiceDetails) ServiceDetailsResponse {
	if d == nil {
		return ServiceDetailsResponse{}
	}
	return ServiceDetailsResponse{
		Trademarks:           d.Trademarks,
		Copyrights:           d.Copyrights,
		BusinessRegistration: d.BusinessRegistration,
		Investment:           d.Investment,
		Other:                d.Other,
	}
}

// ToDomain converts the detail inputs to domain records.
// Date fields that fail to parse are reported as validation errors.
func (in ServiceDetailsInput) ToDomain() (*contract.ServiceDetails, error) {
	var errs shared.ValidationErrors
	d := &contract.ServiceDetails{}

	for i, t := range in.Trademarks {
		prefix := "trademarks[" + strconv.Itoa(i) + "]."
		rec := contract.TrademarkService{
			Applicant:       t.Applicant,
			Address:         t.Address,
			Email:           t.Email,
			Phone:           t.Phone,
			ApplicationNo:   t.ApplicationNo,
			TrademarkName:   t.TrademarkName,
			Classification:  t.Classification,
			FilingDate:      parseDate(&errs, prefix+"filing_date", t.FilingDate),
			PublicationDate: parseDate(&errs, prefix+"publication_date", t.PublicationDate),
			DecisionDate:    parseDate(&errs, prefix+"decision_date", t.DecisionDate),
		}
		if t.ID != nil {
			rec.ID = *t.ID
		}
		d.Trademarks = append(d.Trademarks, rec)
	}

	for _, c := range in.Copyrights {
		rec := contract.CopyrightService{
			WorkName:      c.WorkName,
			Author:        c.Author,
			Owner:         c.Owner,
			OwnerAddress:  c.OwnerAddress,
			WorkType:      c.WorkType,
			CertificateNo: c.CertificateNo,
		}
		if c.ID != nil {
			rec.ID = *c.ID
		}
		d.Copyrights = append(d.Copyrights, rec)
	}

	if b := in.BusinessRegistration; b != nil {
		d.BusinessRegistration = &contract.BusinessRegistrationService{
			CompanyName:         b.CompanyName,
			BusinessType:        b.BusinessType,
			TaxCode:             b.TaxCode,
			Address:             b.Address,
			Email:               b.Email,
			Phone:               b.Phone,
			LegalRepresentative: b.LegalRepresentative,
			Position:            b.Position,
			CharterCapital:      b.CharterCapital,
		}
	}

	if v := in.Investment; v != nil {
		d.Investment = &contract.InvestmentService{
			ProjectCode:  v.ProjectCode,
			Investor:     v.Investor,
			ProjectName:  v.ProjectName,
			Objective:    v.Objective,
			Address:      v.Address,
			TotalCapital: v.TotalCapital,
		}
	}

	if o := in.Other; o != nil {
		d.Other = &contract.OtherService{
			Description:         o.Description,
			LegalRepresentative: o.LegalRepresentative,
			Position:            o.Position,
			Phone:               o.Phone,
			Email:               o.Email,
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseDate(errs *shared.ValidationErrors, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		errs.Add(field, "must be a date in YYYY-MM-DD format")
		return nil
	}
	return &t
}
