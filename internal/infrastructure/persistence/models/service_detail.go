package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
)

// TrademarkServiceModel is one row of trademark_services.
// SortOrder keeps the order the records were submitted in.
type TrademarkServiceModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	ContractID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	SortOrder       int        `gorm:"not null;default:0"`
	Applicant       string     `gorm:"type:varchar(255)"`
	Address         string     `gorm:"type:varchar(500)"`
	Email           string     `gorm:"type:varchar(255)"`
	Phone           string     `gorm:"type:varchar(20)"`
	ApplicationNo   string     `gorm:"column:app_no;type:varchar(50)"`
	FilingDate      *time.Time `gorm:"type:date"`
	TrademarkName   string     `gorm:"type:varchar(255)"`
	ImageKey        string     `gorm:"type:varchar(500)"`
	Classification  string     `gorm:"type:varchar(255)"`
	PublicationDate *time.Time `gorm:"type:date"`
	DecisionDate    *time.Time `gorm:"type:date"`
	CertificateKey  string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TrademarkServiceModel) TableName() string {
	return "trademark_services"
}

// ToDomain converts the row to a domain TrademarkService
func (m *TrademarkServiceModel) ToDomain() contract.TrademarkService {
	return contract.TrademarkService{
		ID:              m.ID,
		ContractID:      m.ContractID,
		Applicant:       m.Applicant,
		Address:         m.Address,
		Email:           m.Email,
		Phone:           m.Phone,
		ApplicationNo:   m.ApplicationNo,
		FilingDate:      m.FilingDate,
		TrademarkName:   m.TrademarkName,
		ImageKey:        m.ImageKey,
		Classification:  m.Classification,
		PublicationDate: m.PublicationDate,
		DecisionDate:    m.DecisionDate,
		CertificateKey:  m.CertificateKey,
	}
}

// TrademarkServiceModelFromDomain creates a row from a domain TrademarkService
func TrademarkServiceModelFromDomain(t contract.TrademarkService, order int) *TrademarkServiceModel {
	return &TrademarkServiceModel{
		ID:              t.ID,
		ContractID:      t.ContractID,
		SortOrder:       order,
		Applicant:       t.Applicant,
		Address:         t.Address,
		Email:           t.Email,
		Phone:           t.Phone,
		ApplicationNo:   t.ApplicationNo,
		FilingDate:      t.FilingDate,
		TrademarkName:   t.TrademarkName,
		ImageKey:        t.ImageKey,
		Classification:  t.Classification,
		PublicationDate: t.PublicationDate,
		DecisionDate:    t.DecisionDate,
		CertificateKey:  t.CertificateKey,
	}
}

// CopyrightServiceModel is one row of copyright_services.
type CopyrightServiceModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SortOrder      int       `gorm:"not null;default:0"`
	WorkName       string    `gorm:"type:varchar(255)"`
	Author         string    `gorm:"type:varchar(255)"`
	Owner          string    `gorm:"type:varchar(255)"`
	OwnerAddress   string    `gorm:"type:varchar(500)"`
	WorkType       string    `gorm:"type:varchar(100)"`
	CertificateNo  string    `gorm:"type:varchar(50)"`
	CertificateKey string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CopyrightServiceModel) TableName() string {
	return "copyright_services"
}

// ToDomain converts the row to a domain CopyrightService
func (m *CopyrightServiceModel) ToDomain() contract.CopyrightService {
	return contract.CopyrightService{
		ID:             m.ID,
		ContractID:     m.ContractID,
		WorkName:       m.WorkName,
		Author:         m.Author,
		Owner:          m.Owner,
		OwnerAddress:   m.OwnerAddress,
		WorkType:       m.WorkType,
		CertificateNo:  m.CertificateNo,
		CertificateKey: m.CertificateKey,
	}
}

// CopyrightServiceModelFromDomain creates a row from a domain CopyrightService
func CopyrightServiceModelFromDomain(c contract.CopyrightService, order int) *CopyrightServiceModel {
	return &CopyrightServiceModel{
		ID:             c.ID,
		ContractID:     c.ContractID,
		SortOrder:      order,
		WorkName:       c.WorkName,
		Author:         c.Author,
		Owner:          c.Owner,
		OwnerAddress:   c.OwnerAddress,
		WorkType:       c.WorkType,
		CertificateNo:  c.CertificateNo,
		CertificateKey: c.CertificateKey,
	}
}

// BusinessRegistrationServiceModel is the row of business_registration_services.
// A contract has at most one.
type BusinessRegistrationServiceModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CompanyName         string    `gorm:"type:varchar(255)"`
	BusinessType        string    `gorm:"type:varchar(100)"`
	TaxCode             string    `gorm:"type:varchar(20)"`
	Address             string    `gorm:"type:varchar(500)"`
	Email               string    `gorm:"type:varchar(255)"`
	Phone               string    `gorm:"type:varchar(20)"`
	LegalRepresentative string    `gorm:"type:varchar(255)"`
	Position            string    `gorm:"type:varchar(100)"`
	CharterCapital      string    `gorm:"type:varchar(100)"`
	CertificateKey      string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BusinessRegistrationServiceModel) TableName() string {
	return "business_registration_services"
}

// ToDomain converts the row to a domain BusinessRegistrationService
func (m *BusinessRegistrationServiceModel) ToDomain() *contract.BusinessRegistrationService {
	return &contract.BusinessRegistrationService{
		ID:                  m.ID,
		ContractID:          m.ContractID,
		CompanyName:         m.CompanyName,
		BusinessType:        m.BusinessType,
		TaxCode:             m.TaxCode,
		Address:             m.Address,
		Email:               m.Email,
		Phone:               m.Phone,
		LegalRepresentative: m.LegalRepresentative,
		Position:            m.Position,
		CharterCapital:      m.CharterCapital,
		CertificateKey:      m.CertificateKey,
	}
}

// BusinessRegistrationServiceModelFromDomain creates a row from a domain BusinessRegistrationService
func BusinessRegistrationServiceModelFromDomain(b *contract.BusinessRegistrationService) *BusinessRegistrationServiceModel {
	return &BusinessRegistrationServiceModel{
		ID:                  b.ID,
		ContractID:          b.ContractID,
		CompanyName:         b.CompanyName,
		BusinessType:        b.BusinessType,
		TaxCode:             b.TaxCode,
		Address:             b.Address,
		Email:               b.Email,
		Phone:               b.Phone,
		LegalRepresentative: b.LegalRepresentative,
		Position:            b.Position,
		CharterCapital:      b.CharterCapital,
		CertificateKey:      b.CertificateKey,
	}
}

// InvestmentServiceModel is the row of investment_services.
type InvestmentServiceModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProjectCode    string    `gorm:"type:varchar(50)"`
	Investor       string    `gorm:"type:varchar(255)"`
	ProjectName    string    `gorm:"type:varchar(255)"`
	Objective      string    `gorm:"type:text"`
	Address        string    `gorm:"type:varchar(500)"`
	TotalCapital   string    `gorm:"type:varchar(100)"`
	CertificateKey string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvestmentServiceModel) TableName() string {
	return "investment_services"
}

// ToDomain converts the row to a domain InvestmentService
func (m *InvestmentServiceModel) ToDomain() *contract.InvestmentService {
	return &contract.InvestmentService{
		ID:             m.ID,
		ContractID:     m.ContractID,
		ProjectCode:    m.ProjectCode,
		Investor:       m.Investor,
		ProjectName:    m.ProjectName,
		Objective:      m.Objective,
		Address:        m.Address,
		TotalCapital:   m.TotalCapital,
		CertificateKey: m.CertificateKey,
	}
}

// InvestmentServiceModelFromDomain creates a row from a domain InvestmentService
func InvestmentServiceModelFromDomain(i *contract.InvestmentService) *InvestmentServiceModel {
	return &InvestmentServiceModel{
		ID:             i.ID,
		ContractID:     i.ContractID,
		ProjectCode:    i.ProjectCode,
		Investor:       i.Investor,
		ProjectName:    i.ProjectName,
		Objective:      i.Objective,
		Address:        i.Address,
		TotalCapital:   i.TotalCapital,
		CertificateKey: i.CertificateKey,
	}
}

// OtherServiceModel is the row of other_services.
type OtherServiceModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Description         string    `gorm:"type:text"`
	LegalRepresentative string    `gorm:"type:varchar(255)"`
	Position            string    `gorm:"type:varchar(100)"`
	Phone               string    `gorm:"type:varchar(20)"`
	Email               string    `gorm:"type:varchar(255)"`
	CertificateKey      string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OtherServiceModel) TableName() string {
	return "other_services"
}

// ToDomain converts the row to a domain OtherService
func (m *OtherServiceModel) ToDomain() *contract.OtherService {
	return &contract.OtherService{
		ID:                  m.ID,
		ContractID:          m.ContractID,
		Description:         m.Description,
		LegalRepresentative: m.LegalRepresentative,
		Position:            m.Position,
		Phone:               m.Phone,
		Email:               m.Email,
		CertificateKey:      m.CertificateKey,
	}
}

// OtherServiceModelFromDomain creates a row from a domain OtherService
func OtherServiceModelFromDomain(o *contract.OtherService) *OtherServiceModel {
	return &OtherServiceModel{
		ID:                  o.ID,
		ContractID:          o.ContractID,
		Description:         o.Description,
		LegalRepresentative: o.LegalRepresentative,
		Position:            o.Position,
		Phone:               o.Phone,
		Email:               o.Email,
		CertificateKey:      o.CertificateKey,
	}
}

// All returns every model this package maps, in dependency order.
// Tests use it with AutoMigrate; production schemas come from SQL migrations.
func All() []any {
	return []any{
		&UserModel{},
		&CustomerModel{},
		&ContractModel{},
		&InstallmentModel{},
		&PaymentLogModel{},
		&HistoryModel{},
		&TrademarkServiceModel{},
		&CopyrightServiceModel{},
		&BusinessRegistrationServiceModel{},
		&InvestmentServiceModel{},
		&OtherServiceModel{},
	}
}
