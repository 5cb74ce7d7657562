package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/identity"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var _ identity.UserRepository = (*GormUserRepository)(nil)

// GormUserRepository keeps staff accounts in the users table
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.first(ctx, "find user", "id = ?", id)
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.first(ctx, "find user by username", "username = ?", identity.NormalizeUsername(username))
}

// Save upserts by primary key; a clash on username maps to shared.ErrAlreadyExists
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user)).Error
	return translateError("save user", err)
}

func (r *GormUserRepository) Count(ctx context.Context) (n int64, err error) {
	err = r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&n).Error
	return n, translateError("count users", err)
}

func (r *GormUserRepository) first(ctx context.Context, op string, cond string, arg any) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&m).Error; err != nil {
		return nil, translateError(op, err)
	}
	return m.ToDomain(), nil
}
