package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/domain/shared/textfold"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find contract", err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a contract and takes a row lock (SELECT ... FOR UPDATE)
func (r *GormContractRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("lock contract", err)
	}
	return model.ToDomain(), nil
}

// FindByContractNo finds a contract by its number
func (r *GormContractRepository) FindByContractNo(ctx context.Context, contractNo string) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "contract_no = ?", contractNo).Error; err != nil {
		return nil, translateError("find contract by number", err)
	}
	return model.ToDomain(), nil
}

// ExistsByContractNo checks whether the number is taken
func (r *GormContractRepository) ExistsByContractNo(ctx context.Context, contractNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("contract_no = ?", contractNo).
		Count(&count).Error; err != nil {
		return false, translateError("check contract number", err)
	}
	return count > 0, nil
}

// FindAll lists contracts matching the filter
func (r *GormContractRepository) FindAll(ctx context.Context, filter contract.ContractFilter) ([]contract.Contract, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)
	query = orderAndPage(query, filter.Filter, ContractSortFields, "contracts")

	var contractModels []models.ContractModel
	if err := query.Select("contracts.*").Find(&contractModels).Error; err != nil {
		return nil, translateError("list contracts", err)
	}
	return toContracts(contractModels), nil
}

// Count counts contracts matching the filter
func (r *GormContractRepository) Count(ctx context.Context, filter contract.ContractFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError("count contracts", err)
	}
	return count, nil
}

// FindByCustomer lists all contracts of a customer, newest first
func (r *GormContractRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&contractModels).Error; err != nil {
		return nil, translateError("list customer contracts", err)
	}
	return toContracts(contractModels), nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	err := translateError("save contract", r.db.WithContext(ctx).Save(model).Error)
	if errors.Is(err, shared.ErrAlreadyExists) {
		return contract.ErrDuplicateContractNo
	}
	return err
}

// Delete deletes a contract with everything that hangs off it
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteContractChildren(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		result := tx.Delete(&models.ContractModel{}, "id = ?", id)
		if result.Error != nil {
			return translateError("delete contract", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies the filter without ordering or pagination.
// Query matches contract_no or the customer's folded code and name.
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("contracts.status = ?", filter.Status)
	}
	if filter.ServiceType != "" {
		query = query.Where("contracts.service_type = ?", filter.ServiceType)
	}
	if filter.CustomerID != nil {
		query = query.Where("contracts.customer_id = ?", *filter.CustomerID)
	}
	if q := textfold.Fold(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.
			Joins("LEFT JOIN customers ON customers.id = contracts.customer_id").
			Where("LOWER(contracts.contract_no) LIKE ? OR customers.name_key LIKE ?", pattern, pattern)
	}
	return query
}

// deleteContractChildren removes the rows owned by the given contracts
func deleteContractChildren(tx *gorm.DB, contractIDs []uuid.UUID) error {
	if len(contractIDs) == 0 {
		return nil
	}
	children := []any{
		&models.PaymentLogModel{},
		&models.InstallmentModel{},
		&models.HistoryModel{},
		&models.TrademarkServiceModel{},
		&models.CopyrightServiceModel{},
		&models.BusinessRegistrationServiceModel{},
		&models.InvestmentServiceModel{},
		&models.OtherServiceModel{},
	}
	for _, child := range children {
		if err := tx.Where("contract_id IN ?", contractIDs).Delete(child).Error; err != nil {
			return translateError("delete contract children", err)
		}
	}
	return nil
}

func toContracts(contractModels []models.ContractModel) []contract.Contract {
	contracts := make([]contract.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts
}

// Ensure GormContractRepository implements ContractRepository
var _ contract.ContractRepository = (*GormContractRepository)(nil)
