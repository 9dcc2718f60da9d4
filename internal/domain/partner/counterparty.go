package partner

import (
	"time"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// CounterpartyRole says which side of the business a counterparty sits on
type CounterpartyRole string

const (
	RoleCustomer CounterpartyRole = "CUSTOMER"
	RoleSupplier CounterpartyRole = "SUPPLIER"
	RoleBoth     CounterpartyRole = "BOTH"
)

// IsValid checks if the role is a valid CounterpartyRole
func (r CounterpartyRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSupplier, RoleBoth:
		return true
	}
	return false
}

// Counterparty is a customer, a supplier, or both. Orders snapshot the name
// at creation.
type Counterparty struct {
	shared.BaseAggregateRoot
	Name    string           `gorm:"type:varchar(200);not null"`
	Role    CounterpartyRole `gorm:"type:varchar(20);not null"`
	Phone   string           `gorm:"type:varchar(30)"`
	Address string           `gorm:"type:varchar(500)"`
	Active  bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Counterparty) TableName() string {
	return "counterparties"
}

// NewCounterparty creates a new active counterparty
func NewCounterparty(name string, role CounterpartyRole) (*Counterparty, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Counterparty name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invalid counterparty role")
	}

	return &Counterparty{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Role:              role,
		Active:            true,
	}, nil
}

// CanBuy returns true if the counterparty may appear on sales orders
func (c *Counterparty) CanBuy() bool {
	return c.Active && (c.Role == RoleCustomer || c.Role == RoleBoth)
}

// CanSupply returns true if the counterparty may appear on purchase orders
func (c *Counterparty) CanSupply() bool {
	return c.Active && (c.Role == RoleSupplier || c.Role == RoleBoth)
}

// Deactivate blocks the counterparty from new orders
func (c *Counterparty) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// Activate re-enables the counterparty
func (c *Counterparty) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
}
