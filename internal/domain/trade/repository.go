package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID with its lines and ledger rows loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its business number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// ExistsByOrderNumber checks whether an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// FindRecent returns orders of a kind ordered by creation time, newest first
	FindRecent(ctx context.Context, kind OrderKind, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindByCounterparty returns orders for a counterparty, newest first
	FindByCounterparty(ctx context.Context, counterpartyID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindByDateRange returns non-cancelled orders of a kind within [from, to)
	FindByDateRange(ctx context.Context, kind OrderKind, from, to time.Time) ([]Order, error)

	// FindWithBalanceDueBetween returns orders that still owe money and whose
	// due date falls within [from, to)
	FindWithBalanceDueBetween(ctx context.Context, from, to time.Time) ([]Order, error)

	// Save creates an order with its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order with an optimistic version check.
	// A stale version surfaces as a concurrency conflict.
	SaveWithLock(ctx context.Context, order *Order) error
}

// PaymentRecordRepository defines the interface for the append-only payment ledger
type PaymentRecordRepository interface {
	// Append persists a new ledger row. Rows are never updated or deleted.
	Append(ctx context.Context, record *PaymentRecord) error

	// FindByOrder returns all ledger rows for an order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentRecord, error)
}

// RefundRepository defines the interface for refund transaction persistence
type RefundRepository interface {
	// FindByID finds a refund by ID with its lines loaded
	FindByID(ctx context.Context, id uuid.UUID) (*RefundTransaction, error)

	// FindByOrder returns all refunds recorded against an order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]RefundTransaction, error)

	// Save creates a refund with its lines
	Save(ctx context.Context, refund *RefundTransaction) error
}

// NumberGenerator produces unique business numbers for orders and refunds.
// Implementations retry on collision a bounded number of times and report
// exhaustion as a conflict error.
type NumberGenerator interface {
	// NextOrderNumber generates the next order number for a kind
	NextOrderNumber(ctx context.Context, kind OrderKind) (string, error)

	// NextRefundNumber generates the next refund number
	NextRefundNumber(ctx context.Context) (string, error)
}
