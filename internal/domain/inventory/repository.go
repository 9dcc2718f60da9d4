package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository defines the interface for product batch persistence
type BatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductBatch, error)

	// FindByProductAndNumber finds a batch by product and batch number
	// (empty string matches the unbatched pool)
	FindByProductAndNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*ProductBatch, error)

	// FindByProduct finds all batches for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductBatch, error)

	// Save creates a batch
	Save(ctx context.Context, batch *ProductBatch) error

	// SaveWithLock updates a batch with an optimistic version check.
	// A stale version surfaces as a concurrency conflict.
	SaveWithLock(ctx context.Context, batch *ProductBatch) error
}

// MovementRepository defines the interface for the append-only stock movement log
type MovementRepository interface {
	// Append persists a new movement row. Movements are never updated or deleted.
	Append(ctx context.Context, movement *StockMovement) error

	// FindByBatch returns all movements for a batch, oldest first
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]StockMovement, error)

	// FindBySource returns all movements recorded for a source document
	FindBySource(ctx context.Context, sourceType SourceType, sourceID string) ([]StockMovement, error)
}
