package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
)

// CustomerRepository stores customers. Lookups that miss return
// shared.ErrNotFound.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCode(ctx context.Context, code string) (*Customer, error)
	// FindAll pages customers; filter.Search matches code, name, email and phone
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Lookup feeds the customer picker: code or name contains query
	Lookup(ctx context.Context, query string, limit int) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	// Delete cascades to the customer's contracts
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsByCode ignores excludeID, so an update can keep its own code
	ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error)
}
