package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// BatchRef identifies a batch by ID when known, otherwise by batch number.
// An empty reference addresses the product's unbatched pool.
type BatchRef struct {
	BatchID     *uuid.UUID
	BatchNumber string
}

// Allocator resolves batches and applies stock movements against them. It is
// a domain service: the repositories handed to it must share the transaction
// of the operation that triggered the movement, so a batch update and its
// movement row commit or roll back together.
type Allocator struct {
	batches   BatchRepository
	movements MovementRepository
}

// NewAllocator creates an Allocator over transaction-scoped repositories
func NewAllocator(batches BatchRepository, movements MovementRepository) *Allocator {
	return &Allocator{
		batches:   batches,
		movements: movements,
	}
}

// ResolveBatch finds the batch a reference addresses: by ID when given, then
// by trimmed batch-number match, creating a new zero-quantity batch when no
// match exists.
func (a *Allocator) ResolveBatch(ctx context.Context, productID uuid.UUID, ref BatchRef) (*ProductBatch, error) {
	if ref.BatchID != nil {
		return a.batches.FindByID(ctx, *ref.BatchID)
	}

	number := strings.TrimSpace(ref.BatchNumber)
	batch, err := a.batches.FindByProductAndNumber(ctx, productID, number)
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	batch, err = NewProductBatch(productID, number, decimal.Zero, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if err := a.batches.Save(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// MovementRequest describes one stock movement to apply
type MovementRequest struct {
	ProductID    uuid.UUID
	Batch        BatchRef
	Type         MovementType
	Quantity     decimal.Decimal // positive magnitude; ADJUST may carry a signed value
	SourceType   SourceType
	SourceID     string
	SourceLineID string
	OperatorID   uuid.UUID
	Note         string
}

// ApplyMovement resolves the batch and applies one signed movement together
// with its append-only log row.
//
// ISSUE requires the requested quantity to fit in the batch's available
// quantity (on hand minus reserved); otherwise the call fails with
// ErrInsufficientStock and nothing is persisted. RECEIVE and ADJUST have no
// floor check beyond on-hand never going negative.
func (a *Allocator) ApplyMovement(ctx context.Context, req MovementRequest) (uuid.UUID, error) {
	if req.Quantity.IsZero() {
		return uuid.Nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}

	batch, err := a.ResolveBatch(ctx, req.ProductID, req.Batch)
	if err != nil {
		return uuid.Nil, err
	}

	var delta decimal.Decimal
	switch req.Type {
	case MovementTypeReceive:
		delta = req.Quantity.Abs()
	case MovementTypeIssue:
		delta = req.Quantity.Abs().Neg()
		if req.Quantity.Abs().GreaterThan(batch.Available()) {
			return uuid.Nil, shared.ErrInsufficientStock
		}
	case MovementTypeAdjust:
		delta = req.Quantity
	default:
		return uuid.Nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}

	if err := batch.Apply(delta); err != nil {
		return uuid.Nil, err
	}

	movement, err := NewStockMovement(
		req.ProductID,
		batch.ID,
		batch.BatchNumber,
		req.Type,
		delta,
		req.SourceType,
		req.SourceID,
		req.OperatorID,
	)
	if err != nil {
		return uuid.Nil, err
	}
	if req.SourceLineID != "" {
		movement.WithSourceLineID(req.SourceLineID)
	}
	if req.Note != "" {
		movement.WithNote(req.Note)
	}

	if err := a.batches.SaveWithLock(ctx, batch); err != nil {
		return uuid.Nil, err
	}
	if err := a.movements.Append(ctx, movement); err != nil {
		return uuid.Nil, err
	}

	return movement.ID, nil
}

// Reserve earmarks stock on the referenced batch for a pending order
func (a *Allocator) Reserve(ctx context.Context, productID uuid.UUID, ref BatchRef, quantity decimal.Decimal) error {
	batch, err := a.ResolveBatch(ctx, productID, ref)
	if err != nil {
		return err
	}
	if err := batch.Reserve(quantity); err != nil {
		return err
	}
	return a.batches.SaveWithLock(ctx, batch)
}

// Release frees a reservation on the referenced batch
func (a *Allocator) Release(ctx context.Context, productID uuid.UUID, ref BatchRef, quantity decimal.Decimal) error {
	batch, err := a.ResolveBatch(ctx, productID, ref)
	if err != nil {
		return err
	}
	if err := batch.Release(quantity); err != nil {
		return err
	}
	return a.batches.SaveWithLock(ctx, batch)
}

// StockReturn describes one refunded line whose goods move back through stock
type StockReturn struct {
	ProductID    uuid.UUID
	Batch        BatchRef
	Quantity     decimal.Decimal
	SourceID     string
	SourceLineID string
	Note         string
}

// RefundStock applies compensating movements for refunded order lines.
// Sales refunds return goods to stock (RECEIVE); purchase refunds send goods
// back to the supplier (ISSUE). Each movement targets the original batch.
func (a *Allocator) RefundStock(ctx context.Context, returns []StockReturn, inbound bool, operatorID uuid.UUID) error {
	movementType := MovementTypeReceive
	if !inbound {
		movementType = MovementTypeIssue
	}

	for _, r := range returns {
		if r.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
		}
		_, err := a.ApplyMovement(ctx, MovementRequest{
			ProductID:    r.ProductID,
			Batch:        r.Batch,
			Type:         movementType,
			Quantity:     r.Quantity,
			SourceType:   SourceTypeRefund,
			SourceID:     r.SourceID,
			SourceLineID: r.SourceLineID,
			OperatorID:   operatorID,
			Note:         r.Note,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
