package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormHistoryRepository implements HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Create appends a history row
func (r *GormHistoryRepository) Create(ctx context.Context, h *contract.History) error {
	return translateError("create contract history", r.db.WithContext(ctx).Create(models.HistoryModelFromDomain(h)).Error)
}

// FindByContract returns a contract's history, newest first
func (r *GormHistoryRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.History, error) {
	var historyModels []models.HistoryModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Find(&historyModels).Error; err != nil {
		return nil, translateError("list contract history", err)
	}

	rows := make([]contract.History, len(historyModels))
	for i := range historyModels {
		rows[i] = *historyModels[i].ToDomain()
	}
	return rows, nil
}

// Ensure GormHistoryRepository implements HistoryRepository
var _ contract.HistoryRepository = (*GormHistoryRepository)(nil)
