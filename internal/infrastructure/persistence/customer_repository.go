package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/domain/shared/textfold"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find customer", err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a customer by its code
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("customer_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		return nil, translateError("find customer by code", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	query = orderAndPage(query, filter, CustomerSortFields, "")

	var customerModels []models.CustomerModel
	if err := query.Find(&customerModels).Error; err != nil {
		return nil, translateError("list customers", err)
	}
	return toCustomers(customerModels), nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError("count customers", err)
	}
	return count, nil
}

// Lookup returns at most limit customers whose code or name contains the query,
// ignoring case and Vietnamese diacritics
func (r *GormCustomerRepository) Lookup(ctx context.Context, query string, limit int) ([]partner.Customer, error) {
	q := textfold.Fold(query)
	if q == "" {
		return []partner.Customer{}, nil
	}

	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("name_key LIKE ?", "%"+q+"%").
		Order("customer_code ASC").
		Limit(limit).
		Find(&customerModels).Error; err != nil {
		return nil, translateError("lookup customers", err)
	}
	return toCustomers(customerModels), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return translateError("save customer", r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes a customer together with its contracts and their children
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contractIDs []uuid.UUID
		if err := tx.Model(&models.ContractModel{}).
			Where("customer_id = ?", id).
			Pluck("id", &contractIDs).Error; err != nil {
			return translateError("list customer contracts", err)
		}
		if err := deleteContractChildren(tx, contractIDs); err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.ContractModel{}).Error; err != nil {
			return translateError("delete customer contracts", err)
		}

		result := tx.Delete(&models.CustomerModel{}, "id = ?", id)
		if result.Error != nil {
			return translateError("delete customer", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByCode checks whether a customer other than excludeID uses the code
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("customer_code = ?", strings.ToUpper(strings.TrimSpace(code)))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translateError("check customer code", err)
	}
	return count > 0, nil
}

// applyFilter applies search and field filters without pagination
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if q := textfold.Fold(filter.Search); q != "" {
		query = query.Where("search_key LIKE ?", "%"+q+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		}
	}
	return query
}

func toCustomers(customerModels []models.CustomerModel) []partner.Customer {
	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
