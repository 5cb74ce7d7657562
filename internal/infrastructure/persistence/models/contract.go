package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate root.
// Paid and remaining amounts are derived from installments and never stored.
type ContractModel struct {
	AggregateModel
	ContractNo       string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	ServiceType      contract.ServiceType `gorm:"type:varchar(20);not null;index"`
	ContractValue    decimal.Decimal      `gorm:"type:decimal(18,0);not null"`
	PaymentType      contract.PaymentType `gorm:"type:varchar(20);not null"`
	PrepaidAmount    decimal.Decimal      `gorm:"type:decimal(18,0);not null;default:0"`
	InstallmentCount int                  `gorm:"not null;default:0"`
	IntervalDays     int                  `gorm:"not null;default:0"`
	Status           contract.Status      `gorm:"type:varchar(20);not null;index"`
	SignedDate       *time.Time           `gorm:"type:date"`
	Notes            string               `gorm:"type:text"`
	CreatedBy        *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract.
func (m *ContractModel) ToDomain() *contract.Contract {
	return &contract.Contract{
		BaseAggregateRoot: m.aggregate(),
		ContractNo:        m.ContractNo,
		CustomerID:        m.CustomerID,
		ServiceType:       m.ServiceType,
		ContractValue:     m.ContractValue,
		PaymentType:       m.PaymentType,
		PrepaidAmount:     m.PrepaidAmount,
		InstallmentCount:  m.InstallmentCount,
		IntervalDays:      m.IntervalDays,
		Status:            m.Status,
		SignedDate:        m.SignedDate,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Contract.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.setAggregate(c.BaseAggregateRoot)
	m.ContractNo = c.ContractNo
	m.CustomerID = c.CustomerID
	m.ServiceType = c.ServiceType
	m.ContractValue = c.ContractValue
	m.PaymentType = c.PaymentType
	m.PrepaidAmount = c.PrepaidAmount
	m.InstallmentCount = c.InstallmentCount
	m.IntervalDays = c.IntervalDays
	m.Status = c.Status
	m.SignedDate = c.SignedDate
	m.Notes = c.Notes
	m.CreatedBy = c.CreatedBy
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// InstallmentModel is the persistence model for a PaymentInstallment.
// (contract_id, installment_no) is unique.
type InstallmentModel struct {
	BaseModel
	ContractID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_installments_contract_no,priority:1"`
	InstallmentNo int             `gorm:"not null;uniqueIndex:idx_installments_contract_no,priority:2"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,0);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,0);not null;default:0"`
	DueDate       *time.Time      `gorm:"type:date"`
	PaidDate      *time.Time      `gorm:"type:date"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "payment_installments"
}

// ToDomain converts the persistence model to a domain PaymentInstallment.
func (m *InstallmentModel) ToDomain() *contract.PaymentInstallment {
	return &contract.PaymentInstallment{
		BaseEntity:    m.entity(),
		ContractID:    m.ContractID,
		InstallmentNo: m.InstallmentNo,
		Amount:        m.Amount,
		PaidAmount:    m.PaidAmount,
		DueDate:       m.DueDate,
		PaidDate:      m.PaidDate,
		Notes:         m.Notes,
	}
}

// InstallmentModelFromDomain creates a new persistence model from a domain PaymentInstallment.
func InstallmentModelFromDomain(i *contract.PaymentInstallment) *InstallmentModel {
	m := &InstallmentModel{
		ContractID:    i.ContractID,
		InstallmentNo: i.InstallmentNo,
		Amount:        i.Amount,
		PaidAmount:    i.PaidAmount,
		DueDate:       i.DueDate,
		PaidDate:      i.PaidDate,
		Notes:         i.Notes,
	}
	m.setEntity(i.BaseEntity)
	return m
}

// PaymentLogModel is the persistence model for a PaymentLog entry.
type PaymentLogModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	ContractID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(18,0);not null"`
	PaidAt            time.Time       `gorm:"not null"`
	Notes             string          `gorm:"type:text"`
	InvoiceExported   bool            `gorm:"not null;default:false"`
	InvoiceExportedAt *time.Time
	CreatedBy         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentLogModel) TableName() string {
	return "payment_logs"
}

// ToDomain converts the persistence model to a domain PaymentLog.
func (m *PaymentLogModel) ToDomain() *contract.PaymentLog {
	return &contract.PaymentLog{
		ID:                m.ID,
		ContractID:        m.ContractID,
		InstallmentID:     m.InstallmentID,
		AmountPaid:        m.AmountPaid,
		PaidAt:            m.PaidAt,
		Notes:             m.Notes,
		InvoiceExported:   m.InvoiceExported,
		InvoiceExportedAt: m.InvoiceExportedAt,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
	}
}

// PaymentLogModelFromDomain creates a new persistence model from a domain PaymentLog.
func PaymentLogModelFromDomain(l *contract.PaymentLog) *PaymentLogModel {
	return &PaymentLogModel{
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

// HistoryModel is the persistence model for a contract History row.
// old_data and new_data hold JSON snapshots; empty means none.
type HistoryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`
	ChangedBy  string    `gorm:"type:varchar(100);not null"`
	Action     string    `gorm:"type:varchar(50);not null"`
	OldData    string    `gorm:"type:text"`
	NewData    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (HistoryModel) TableName() string {
	return "contract_histories"
}

// ToDomain converts the persistence model to a domain History row.
func (m *HistoryModel) ToDomain() *contract.History {
	return &contract.History{
		ID:         m.ID,
		ContractID: m.ContractID,
		User:       m.ChangedBy,
		Action:     contract.HistoryAction(m.Action),
		OldData:    m.OldData,
		NewData:    m.NewData,
		CreatedAt:  m.CreatedAt,
	}
}

// HistoryModelFromDomain creates a new persistence model from a domain History row.
func HistoryModelFromDomain(h *contract.History) *HistoryModel {
	return &HistoryModel{
		ID:         h.ID,
		ContractID: h.ContractID,
		ChangedBy:  h.User,
		Action:     string(h.Action),
		OldData:    h.OldData,
		NewData:    h.NewData,
		CreatedAt:  h.CreatedAt,
	}
}
