package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindActive returns active products, paginated
	FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[Product], error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
