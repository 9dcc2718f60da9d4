package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/inventory"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductBatch, error) {
	var batch inventory.ProductBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProductAndNumber finds a batch by product and batch number
func (r *GormBatchRepository) FindByProductAndNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*inventory.ProductBatch, error) {
	var batch inventory.ProductBatch
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND batch_number = ?", productID, batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProduct finds all batches for a product
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductBatch, error) {
	var batches []inventory.ProductBatch
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("batch_number ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.ProductBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// SaveWithLock updates a batch with an optimistic version check.
// A stale version surfaces as a concurrency conflict.
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, batch *inventory.ProductBatch) error {
	currentVersion := batch.Version
	batch.Version++
	batch.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&inventory.ProductBatch{}).
		Where("id = ? AND version = ?", batch.ID, currentVersion).
		Updates(map[string]interface{}{
			"on_hand":    batch.OnHand,
			"reserved":   batch.Reserved,
			"unit_cost":  batch.UnitCost,
			"unit_price": batch.UnitPrice,
			"version":    batch.Version,
			"updated_at": batch.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
