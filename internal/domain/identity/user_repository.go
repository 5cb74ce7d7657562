package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores staff accounts. Lookups by username expect the
// NormalizeUsername form; implementations normalize again on their side.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
	// Count is zero only before the bootstrap admin exists
	Count(ctx context.Context) (int64, error)
}
