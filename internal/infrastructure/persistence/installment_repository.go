package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInstallmentRepository implements InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.PaymentInstallment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find installment", err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an installment and takes a row lock.
// Concurrent payments against the same installment serialize here.
func (r *GormInstallmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.PaymentInstallment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("lock installment", err)
	}
	return model.ToDomain(), nil
}

// FindByContract returns the schedule ordered by installment number
func (r *GormInstallmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.PaymentInstallment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("installment_no ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, translateError("list installments", err)
	}

	items := make([]contract.PaymentInstallment, len(installmentModels))
	for i := range installmentModels {
		items[i] = *installmentModels[i].ToDomain()
	}
	return items, nil
}

// Save updates a single installment
func (r *GormInstallmentRepository) Save(ctx context.Context, inst *contract.PaymentInstallment) error {
	model := models.InstallmentModelFromDomain(inst)
	return translateError("save installment", r.db.WithContext(ctx).Save(model).Error)
}

// CreateBatch inserts a full schedule in one statement
func (r *GormInstallmentRepository) CreateBatch(ctx context.Context, items []*contract.PaymentInstallment) error {
	if len(items) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(items))
	for i, item := range items {
		installmentModels[i] = models.InstallmentModelFromDomain(item)
	}
	return translateError("create installments", r.db.WithContext(ctx).Create(installmentModels).Error)
}

// DeleteByContract removes the schedule of a contract and the payment logs against it
func (r *GormInstallmentRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contractID).Delete(&models.PaymentLogModel{}).Error; err != nil {
			return translateError("delete payment logs", err)
		}
		if err := tx.Where("contract_id = ?", contractID).Delete(&models.InstallmentModel{}).Error; err != nil {
			return translateError("delete installments", err)
		}
		return nil
	})
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ contract.InstallmentRepository = (*GormInstallmentRepository)(nil)
