package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// ProductBatch represents a named sub-pool of a product's stock with its own
// cost, price and quantities. An empty batch number denotes the unbatched pool.
type ProductBatch struct {
	shared.BaseEntity
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_product_number,priority:1"`
	BatchNumber string          `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_batch_product_number,priority:2"`
	OnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reserved    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Version     int             `gorm:"not null;default:1"` // optimistic concurrency token
}

// TableName returns the table name for GORM
func (ProductBatch) TableName() string {
	return "product_batches"
}

// NewProductBatch creates a new empty batch for a product
func NewProductBatch(productID uuid.UUID, batchNumber string, unitCost, unitPrice decimal.Decimal) (*ProductBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &ProductBatch{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		BatchNumber: batchNumber,
		OnHand:      decimal.Zero,
		Reserved:    decimal.Zero,
		UnitCost:    unitCost,
		UnitPrice:   unitPrice,
		Version:     1,
	}, nil
}

// Available returns the quantity not earmarked for pending orders
func (b *ProductBatch) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// Apply adjusts the on-hand quantity by a signed delta.
// Negative results are rejected; the movement log is the source of truth and
// must never record a delta the batch cannot absorb.
func (b *ProductBatch) Apply(delta decimal.Decimal) error {
	next := b.OnHand.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	b.OnHand = next
	b.UpdatedAt = time.Now()
	return nil
}

// Reserve earmarks quantity for a pending order. Reservation never touches
// the on-hand quantity.
func (b *ProductBatch) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if quantity.GreaterThan(b.Available()) {
		return shared.ErrInsufficientStock
	}
	b.Reserved = b.Reserved.Add(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// Release frees a reservation. The reserved quantity is clamped at zero to
// tolerate releases arriving out of order with the reservations they undo.
func (b *ProductBatch) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	b.Reserved = b.Reserved.Sub(quantity)
	if b.Reserved.IsNegative() {
		b.Reserved = decimal.Zero
	}
	b.UpdatedAt = time.Now()
	return nil
}

// SetUnitCost updates the batch unit cost
func (b *ProductBatch) SetUnitCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	b.UnitCost = cost
	b.UpdatedAt = time.Now()
	return nil
}

// SetUnitPrice updates the batch unit price
func (b *ProductBatch) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	b.UnitPrice = price
	b.UpdatedAt = time.Now()
	return nil
}

// HasStock returns true if the batch has any on-hand quantity
func (b *ProductBatch) HasStock() bool {
	return b.OnHand.GreaterThan(decimal.Zero)
}

// IsUnbatched returns true if this is the product's unbatched pool
func (b *ProductBatch) IsUnbatched() bool {
	return b.BatchNumber == ""
}
