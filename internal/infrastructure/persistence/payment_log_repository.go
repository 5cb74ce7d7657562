package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentLogRepository implements PaymentLogRepository using GORM
type GormPaymentLogRepository struct {
	db *gorm.DB
}

// NewGormPaymentLogRepository creates a new GormPaymentLogRepository
func NewGormPaymentLogRepository(db *gorm.DB) *GormPaymentLogRepository {
	return &GormPaymentLogRepository{db: db}
}

// FindByID finds a log entry by its ID
func (r *GormPaymentLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.PaymentLog, error) {
	var model models.PaymentLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find payment log", err)
	}
	return model.ToDomain(), nil
}

// FindByContract returns a contract's log entries, oldest first
func (r *GormPaymentLogRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.PaymentLog, error) {
	return r.find(ctx, "contract_id = ?", contractID)
}

// FindByInstallment returns an installment's log entries, oldest first
func (r *GormPaymentLogRepository) FindByInstallment(ctx context.Context, installmentID uuid.UUID) ([]contract.PaymentLog, error) {
	return r.find(ctx, "installment_id = ?", installmentID)
}

func (r *GormPaymentLogRepository) find(ctx context.Context, cond string, id uuid.UUID) ([]contract.PaymentLog, error) {
	var logModels []models.PaymentLogModel
	if err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("paid_at ASC, created_at ASC").
		Find(&logModels).Error; err != nil {
		return nil, translateError("list payment logs", err)
	}

	logs := make([]contract.PaymentLog, len(logModels))
	for i := range logModels {
		logs[i] = *logModels[i].ToDomain()
	}
	return logs, nil
}

// Create appends a new log entry
func (r *GormPaymentLogRepository) Create(ctx context.Context, log *contract.PaymentLog) error {
	model := models.PaymentLogModelFromDomain(log)
	return translateError("create payment log", r.db.WithContext(ctx).Create(model).Error)
}

// UpdateInvoiceFlag persists only the invoice columns; the rest of a log is immutable
func (r *GormPaymentLogRepository) UpdateInvoiceFlag(ctx context.Context, log *contract.PaymentLog) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentLogModel{}).
		Where("id = ?", log.ID).
		Updates(map[string]any{
			"invoice_exported":    log.InvoiceExported,
			"invoice_exported_at": log.InvoiceExportedAt,
		})
	if result.Error != nil {
		return translateError("update invoice flag", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPaymentLogRepository implements PaymentLogRepository
var _ contract.PaymentLogRepository = (*GormPaymentLogRepository)(nil)
