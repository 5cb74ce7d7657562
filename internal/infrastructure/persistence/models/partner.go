package models

import (
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared/textfold"
)

// CustomerModel is the persistence model for the Customer domain entity.
// SearchKey and NameKey hold accent-folded copies of the searchable columns.
type CustomerModel struct {
	AggregateModel
	Code      string                 `gorm:"column:customer_code;type:varchar(50);not null;uniqueIndex"`
	Name      string                 `gorm:"type:varchar(255);not null"`
	Type      partner.CustomerType   `gorm:"type:varchar(20);not null;default:'personal'"`
	Status    partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'approved';index"`
	Address   string                 `gorm:"type:varchar(500)"`
	Phone     string                 `gorm:"type:varchar(20)"`
	Email     string                 `gorm:"type:varchar(255)"`
	CCCD      string                 `gorm:"column:cccd;type:varchar(20)"`
	TaxCode   string                 `gorm:"type:varchar(20)"`
	Manager   string                 `gorm:"type:varchar(255)"`
	Position  string                 `gorm:"type:varchar(100)"`
	Note      string                 `gorm:"type:text"`
	SearchKey string                 `gorm:"type:text;not null;default:''"`
	NameKey   string                 `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.aggregate(),
		Code:              m.Code,
		Name:              m.Name,
		Type:              m.Type,
		Status:            m.Status,
		Address:           m.Address,
		Phone:             m.Phone,
		Email:             m.Email,
		CCCD:              m.CCCD,
		TaxCode:           m.TaxCode,
		Manager:           m.Manager,
		Position:          m.Position,
		Note:              m.Note,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.setAggregate(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Type = c.Type
	m.Status = c.Status
	m.Address = c.Address
	m.Phone = c.Phone
	m.Email = c.Email
	m.CCCD = c.CCCD
	m.TaxCode = c.TaxCode
	m.Manager = c.Manager
	m.Position = c.Position
	m.Note = c.Note
	m.SearchKey = c.SearchKey()
	m.NameKey = textfold.Key(c.Code, c.Name)
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
