package contract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
)

var (
	phoneDigits = regexp.MustCompile(`^\d{1,20}$`)
	emailFormat = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// TrademarkService is one trademark filing handled under a contract
type TrademarkService struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	Applicant       string     `json:"applicant"`
	Address         string     `json:"address"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	ApplicationNo   string     `json:"app_no"`
	FilingDate      *time.Time `json:"filing_date,omitempty"`
	TrademarkName   string     `json:"trademark_name"`
	ImageKey        string     `json:"image_key,omitempty"`
	Classification  string     `json:"classification"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	DecisionDate    *time.Time `json:"decision_date,omitempty"`
	CertificateKey  string     `json:"certificate_key,omitempty"`
}

// CopyrightService is one copyright registration handled under a contract
type CopyrightService struct {
	ID             uuid.UUID `json:"id"`
	ContractID     uuid.UUID `json:"contract_id"`
	WorkName       string    `json:"work_name"`
	Author         string    `json:"author"`
	Owner          string    `json:"owner"`
	OwnerAddress   string    `json:"owner_address"`
	WorkType       string    `json:"type"`
	CertificateNo  string    `json:"certificate_no"`
	CertificateKey string    `json:"certificate_key,omitempty"`
}

// BusinessRegistrationService is the company registration of a contract
type BusinessRegistrationService struct {
	ID                  uuid.UUID `json:"id"`
	ContractID          uuid.UUID `json:"contract_id"`
	CompanyName         string    `json:"company_name"`
	BusinessType        string    `json:"business_type"`
	TaxCode             string    `json:"tax_code"`
	Address             string    `json:"address"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	LegalRepresentative string    `json:"legal_representative"`
	Position            string    `json:"position"`
	CharterCapital      string    `json:"charter_capital"`
	CertificateKey      string    `json:"certificate_key,omitempty"`
}

// InvestmentService is the investment project registration of a contract
type InvestmentService struct {
	ID             uuid.UUID `json:"id"`
	ContractID     uuid.UUID `json:"contract_id"`
	ProjectCode    string    `json:"project_code"`
	Investor       string    `json:"investor"`
	ProjectName    string    `json:"project_name"`
	Objective      string    `json:"objective"`
	Address        string    `json:"address"`
	TotalCapital   string    `json:"total_capital"`
	CertificateKey string    `json:"certificate_key,omitempty"`
}

// OtherService is a free-form service of a contract
type OtherService struct {
	ID                  uuid.UUID `json:"id"`
	ContractID          uuid.UUID `json:"contract_id"`
	Description         string    `json:"description"`
	LegalRepresentative string    `json:"legal_representative"`
	Position            string    `json:"position"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email"`
	CertificateKey      string    `json:"certificate_key,omitempty"`
}

// ServiceDetails groups the detail records attached to one contract.
// Only the slot matching the contract's service type is used.
type ServiceDetails struct {
	Trademarks           []TrademarkService
	Copyrights           []CopyrightService
	BusinessRegistration *BusinessRegistrationService
	Investment           *InvestmentService
	Other                *OtherService
}

// Validate checks that the details match the service type and carry their required fields
func (d *ServiceDetails) Validate(t ServiceType) error {
	var errs shared.ValidationErrors

	if d.hasOtherThan(t) {
		errs.Add("service_details", fmt.Sprintf("only %s details may be attached to this contract", t))
	}

	switch t {
	case ServiceTypeTrademark:
		if len(d.Trademarks) == 0 {
			errs.Add("trademarks", "at least one trademark is required")
		}
		for i := range d.Trademarks {
			d.Trademarks[i].validate(fmt.Sprintf("trademarks[%d]", i), &errs)
		}
	case ServiceTypeCopyright:
		if len(d.Copyrights) == 0 {
			errs.Add("copyrights", "at least one copyright work is required")
		}
		for i := range d.Copyrights {
			d.Copyrights[i].validate(fmt.Sprintf("copyrights[%d]", i), &errs)
		}
	case ServiceTypeBusinessRegistration:
		if d.BusinessRegistration == nil {
			errs.Add("business_registration", "is required")
		} else {
			d.BusinessRegistration.validate("business_registration", &errs)
		}
	case ServiceTypeInvestment:
		if d.Investment == nil {
			errs.Add("investment", "is required")
		} else {
			d.Investment.validate("investment", &errs)
		}
	case ServiceTypeOther:
		if d.Other == nil {
			errs.Add("other_service", "is required")
		} else {
			d.Other.validate("other_service", &errs)
		}
	}

	return errs.Err()
}

// BindTo assigns ids to new records and points every record at the contract
func (d *ServiceDetails) BindTo(contractID uuid.UUID) {
	for i := range d.Trademarks {
		d.Trademarks[i].ID = ensureID(d.Trademarks[i].ID)
		d.Trademarks[i].ContractID = contractID
	}
	for i := range d.Copyrights {
		d.Copyrights[i].ID = ensureID(d.Copyrights[i].ID)
		d.Copyrights[i].ContractID = contractID
	}
	if d.BusinessRegistration != nil {
		d.BusinessRegistration.ID = ensureID(d.BusinessRegistration.ID)
		d.BusinessRegistration.ContractID = contractID
	}
	if d.Investment != nil {
		d.Investment.ID = ensureID(d.Investment.ID)
		d.Investment.ContractID = contractID
	}
	if d.Other != nil {
		d.Other.ID = ensureID(d.Other.ID)
		d.Other.ContractID = contractID
	}
}

// CertificateKeys returns every object-storage key referenced by the details
func (d *ServiceDetails) CertificateKeys() []string {
	keys := make([]string, 0)
	add := func(k string) {
		if k != "" {
			keys = append(keys, k)
		}
	}
	for _, t := range d.Trademarks {
		add(t.CertificateKey)
		add(t.ImageKey)
	}
	for _, c := range d.Copyrights {
		add(c.CertificateKey)
	}
	if d.BusinessRegistration != nil {
		add(d.BusinessRegistration.CertificateKey)
	}
	if d.Investment != nil {
		add(d.Investment.CertificateKey)
	}
	if d.Other != nil {
		add(d.Other.CertificateKey)
	}
	return keys
}

func (d *ServiceDetails) hasOtherThan(t ServiceType) bool {
	present := map[ServiceType]bool{
		ServiceTypeTrademark:            len(d.Trademarks) > 0,
		ServiceTypeCopyright:            len(d.Copyrights) > 0,
		ServiceTypeBusinessRegistration: d.BusinessRegistration != nil,
		ServiceTypeInvestment:           d.Investment != nil,
		ServiceTypeOther:                d.Other != nil,
	}
	for kind, ok := range present {
		if ok && kind != t {
			return true
		}
	}
	return false
}

func (s *TrademarkService) validate(prefix string, errs *shared.ValidationErrors) {
	required(errs, prefix, "applicant", s.Applicant)
	required(errs, prefix, "address", s.Address)
	required(errs, prefix, "app_no", s.ApplicationNo)
	required(errs, prefix, "trademark_name", s.TrademarkName)
	required(errs, prefix, "classification", s.Classification)
	if s.FilingDate == nil {
		errs.Add(prefix+".filing_date", "is required")
	}
	checkEmail(errs, prefix, s.Email)
	checkPhone(errs, prefix, s.Phone)
}

func (s *CopyrightService) validate(prefix string, errs *shared.ValidationErrors) {
	required(errs, prefix, "work_name", s.WorkName)
	required(errs, prefix, "author", s.Author)
	required(errs, prefix, "owner", s.Owner)
	required(errs, prefix, "owner_address", s.OwnerAddress)
	required(errs, prefix, "type", s.WorkType)
	required(errs, prefix, "certificate_no", s.CertificateNo)
}

func (s *BusinessRegistrationService) validate(prefix string, errs *shared.ValidationErrors) {
	required(errs, prefix, "company_name", s.CompanyName)
	required(errs, prefix, "business_type", s.BusinessType)
	required(errs, prefix, "address", s.Address)
	required(errs, prefix, "legal_representative", s.LegalRepresentative)
	required(errs, prefix, "position", s.Position)
	required(errs, prefix, "charter_capital", s.CharterCapital)
	checkEmail(errs, prefix, s.Email)
	checkPhone(errs, prefix, s.Phone)
}

func (s *InvestmentService) validate(prefix string, errs *shared.ValidationErrors) {
	required(errs, prefix, "project_code", s.ProjectCode)
	required(errs, prefix, "investor", s.Investor)
	required(errs, prefix, "project_name", s.ProjectName)
	required(errs, prefix, "objective", s.Objective)
	required(errs, prefix, "address", s.Address)
	required(errs, prefix, "total_capital", s.TotalCapital)
}

func (s *OtherService) validate(prefix string, errs *shared.ValidationErrors) {
	required(errs, prefix, "description", s.Description)
	required(errs, prefix, "legal_representative", s.LegalRepresentative)
	required(errs, prefix, "position", s.Position)
	checkEmail(errs, prefix, s.Email)
	checkPhone(errs, prefix, s.Phone)
}

func required(errs *shared.ValidationErrors, prefix, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(prefix+"."+field, "is required")
	}
}

func checkEmail(errs *shared.ValidationErrors, prefix, value string) {
	switch {
	case value == "":
		errs.Add(prefix+".email", "is required")
	case !emailFormat.MatchString(value):
		errs.Add(prefix+".email", "invalid email format")
	}
}

func checkPhone(errs *shared.ValidationErrors, prefix, value string) {
	switch {
	case value == "":
		errs.Add(prefix+".phone", "is required")
	case !phoneDigits.MatchString(value):
		errs.Add(prefix+".phone", "may only contain digits")
	}
}

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
