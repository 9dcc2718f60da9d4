package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// CounterpartyRepository defines the interface for counterparty persistence
type CounterpartyRepository interface {
	// FindByID finds a counterparty by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Counterparty, error)

	// FindActive returns active counterparties, paginated
	FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[Counterparty], error)

	// Save creates or updates a counterparty
	Save(ctx context.Context, counterparty *Counterparty) error
}
