package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// Product is the catalog aggregate root. Orders snapshot the product name and
// code at line creation, so later edits here never rewrite history.
type Product struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	DefaultPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DefaultCost  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TrackBatches bool            `gorm:"not null;default:false"`
	Active       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(code, name, unit string, defaultPrice, defaultCost decimal.Decimal) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if defaultPrice.IsNegative() || defaultCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price and cost cannot be negative")
	}
	if unit == "" {
		unit = "pcs"
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Unit:              unit,
		DefaultPrice:      defaultPrice,
		DefaultCost:       defaultCost,
		Active:            true,
	}, nil
}

// UpdatePricing updates the default price and cost
func (p *Product) UpdatePricing(price, cost decimal.Decimal) error {
	if price.IsNegative() || cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price and cost cannot be negative")
	}
	p.DefaultPrice = price
	p.DefaultCost = cost
	p.UpdatedAt = time.Now()
	return nil
}

// Deactivate hides the product from new orders. Existing orders keep their
// snapshots.
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Activate makes the product orderable again
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}
