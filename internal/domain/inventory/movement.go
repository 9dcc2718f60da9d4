package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// MovementType represents the type of a stock movement
type MovementType string

const (
	// MovementTypeReceive represents stock coming into a batch (purchase receiving, sales refund)
	MovementTypeReceive MovementType = "RECEIVE"
	// MovementTypeIssue represents stock leaving a batch (sales fulfillment, purchase refund)
	MovementTypeIssue MovementType = "ISSUE"
	// MovementTypeAdjust represents a manual correction, signed either way
	MovementTypeAdjust MovementType = "ADJUST"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReceive, MovementTypeIssue, MovementTypeAdjust:
		return true
	}
	return false
}

// SourceType represents the source document type for a movement
type SourceType string

const (
	SourceTypeSalesOrder       SourceType = "SALES_ORDER"
	SourceTypePurchaseOrder    SourceType = "PURCHASE_ORDER"
	SourceTypeRefund           SourceType = "REFUND"
	SourceTypeManualAdjustment SourceType = "MANUAL_ADJUSTMENT"
	SourceTypeInitialStock     SourceType = "INITIAL_STOCK"
)

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeSalesOrder, SourceTypePurchaseOrder, SourceTypeRefund,
		SourceTypeManualAdjustment, SourceTypeInitialStock:
		return true
	}
	return false
}

// StockMovement is an immutable record of one signed quantity change on a
// batch. Movements are never updated or deleted; a batch's on-hand quantity is
// always the fold of its movement deltas, and corrections are new
// compensating rows.
type StockMovement struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product"`
	BatchID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_batch"`
	BatchNumber   string          `gorm:"type:varchar(100);not null;default:''"`
	MovementType  MovementType    `gorm:"type:varchar(20);not null"`
	QuantityDelta decimal.Decimal `gorm:"type:decimal(18,4);not null"` // signed: RECEIVE > 0, ISSUE < 0, ADJUST either
	SourceType    SourceType      `gorm:"type:varchar(30);not null;index:idx_movement_source"`
	SourceID      string          `gorm:"type:varchar(50);not null;index:idx_movement_source"`
	SourceLineID  string          `gorm:"type:varchar(50)"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null"`
	Note          string          `gorm:"type:varchar(500)"`
	OccurredAt    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement record. The delta sign must
// agree with the movement type.
func NewStockMovement(
	productID, batchID uuid.UUID,
	batchNumber string,
	movementType MovementType,
	quantityDelta decimal.Decimal,
	sourceType SourceType,
	sourceID string,
	operatorID uuid.UUID,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantityDelta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity delta cannot be zero")
	}
	switch movementType {
	case MovementTypeReceive:
		if quantityDelta.IsNegative() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Receive delta must be positive")
		}
	case MovementTypeIssue:
		if quantityDelta.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Issue delta must be negative")
		}
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid source type")
	}
	if sourceID == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_ID", "Source ID cannot be empty")
	}
	if operatorID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		BatchID:       batchID,
		BatchNumber:   batchNumber,
		MovementType:  movementType,
		QuantityDelta: quantityDelta,
		SourceType:    sourceType,
		SourceID:      sourceID,
		OperatorID:    operatorID,
		OccurredAt:    time.Now(),
	}, nil
}

// WithSourceLineID sets the source line ID for the movement
func (m *StockMovement) WithSourceLineID(lineID string) *StockMovement {
	m.SourceLineID = lineID
	return m
}

// WithNote sets the free-text note for the movement
func (m *StockMovement) WithNote(note string) *StockMovement {
	m.Note = note
	return m
}

// WithOccurredAt sets the movement timestamp
func (m *StockMovement) WithOccurredAt(at time.Time) *StockMovement {
	m.OccurredAt = at
	return m
}

// IsInbound returns true if the movement increases the batch quantity
func (m *StockMovement) IsInbound() bool {
	return m.QuantityDelta.IsPositive()
}

// SumDeltas folds the signed deltas of a movement list. A batch's on-hand
// quantity must always equal the fold of its movements.
func SumDeltas(movements []StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.QuantityDelta)
	}
	return total
}
