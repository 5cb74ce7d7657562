package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceDetailRepository implements ServiceDetailRepository using GORM.
// Each service type has its own table keyed by contract_id.
type GormServiceDetailRepository struct {
	db *gorm.DB
}

// NewGormServiceDetailRepository creates a new GormServiceDetailRepository
func NewGormServiceDetailRepository(db *gorm.DB) *GormServiceDetailRepository {
	return &GormServiceDetailRepository{db: db}
}

// Load returns every detail record of a contract
func (r *GormServiceDetailRepository) Load(ctx context.Context, contractID uuid.UUID) (*contract.ServiceDetails, error) {
	db := r.db.WithContext(ctx)
	details := &contract.ServiceDetails{
		Trademarks: make([]contract.TrademarkService, 0),
		Copyrights: make([]contract.CopyrightService, 0),
	}

	var trademarks []models.TrademarkServiceModel
	if err := db.Where("contract_id = ?", contractID).Order("sort_order ASC").Find(&trademarks).Error; err != nil {
		return nil, translateError("load trademark details", err)
	}
	for i := range trademarks {
		details.Trademarks = append(details.Trademarks, trademarks[i].ToDomain())
	}

	var copyrights []models.CopyrightServiceModel
	if err := db.Where("contract_id = ?", contractID).Order("sort_order ASC").Find(&copyrights).Error; err != nil {
		return nil, translateError("load copyright details", err)
	}
	for i := range copyrights {
		details.Copyrights = append(details.Copyrights, copyrights[i].ToDomain())
	}

	var registrations []models.BusinessRegistrationServiceModel
	if err := db.Where("contract_id = ?", contractID).Limit(1).Find(&registrations).Error; err != nil {
		return nil, translateError("load business registration", err)
	}
	if len(registrations) > 0 {
		details.BusinessRegistration = registrations[0].ToDomain()
	}

	var investments []models.InvestmentServiceModel
	if err := db.Where("contract_id = ?", contractID).Limit(1).Find(&investments).Error; err != nil {
		return nil, translateError("load investment", err)
	}
	if len(investments) > 0 {
		details.Investment = investments[0].ToDomain()
	}

	var others []models.OtherServiceModel
	if err := db.Where("contract_id = ?", contractID).Limit(1).Find(&others).Error; err != nil {
		return nil, translateError("load other service", err)
	}
	if len(others) > 0 {
		details.Other = others[0].ToDomain()
	}

	return details, nil
}

// Replace deletes the contract's current details and stores the given ones
func (r *GormServiceDetailRepository) Replace(ctx context.Context, contractID uuid.UUID, details *contract.ServiceDetails) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []any{
			&models.TrademarkServiceModel{},
			&models.CopyrightServiceModel{},
			&models.BusinessRegistrationServiceModel{},
			&models.InvestmentServiceModel{},
			&models.OtherServiceModel{},
		} {
			if err := tx.Where("contract_id = ?", contractID).Delete(table).Error; err != nil {
				return translateError("clear service details", err)
			}
		}
		if details == nil {
			return nil
		}
		details.BindTo(contractID)

		for i, t := range details.Trademarks {
			if err := tx.Create(models.TrademarkServiceModelFromDomain(t, i)).Error; err != nil {
				return translateError("store trademark detail", err)
			}
		}
		for i, c := range details.Copyrights {
			if err := tx.Create(models.CopyrightServiceModelFromDomain(c, i)).Error; err != nil {
				return translateError("store copyright detail", err)
			}
		}
		if details.BusinessRegistration != nil {
			if err := tx.Create(models.BusinessRegistrationServiceModelFromDomain(details.BusinessRegistration)).Error; err != nil {
				return translateError("store business registration", err)
			}
		}
		if details.Investment != nil {
			if err := tx.Create(models.InvestmentServiceModelFromDomain(details.Investment)).Error; err != nil {
				return translateError("store investment", err)
			}
		}
		if details.Other != nil {
			if err := tx.Create(models.OtherServiceModelFromDomain(details.Other)).Error; err != nil {
				return translateError("store other service", err)
			}
		}
		return nil
	})
}

// Ensure GormServiceDetailRepository implements ServiceDetailRepository
var _ contract.ServiceDetailRepository = (*GormServiceDetailRepository)(nil)
