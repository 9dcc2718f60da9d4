package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// RefundTransactionLine records the quantity returned against one order line
type RefundTransactionLine struct {
	shared.BaseEntity
	RefundID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_refund_line_refund"`
	OrderLineID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID     *uuid.UUID      `gorm:"type:uuid"`
	BatchNumber string          `gorm:"type:varchar(100);not null;default:''"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (RefundTransactionLine) TableName() string {
	return "refund_transaction_lines"
}

// RefundTransaction is the record of one refund against an order: the cash
// returned plus the goods quantities that moved back. It is written once and
// never edited; the order's ledger row and stock movements reference it.
type RefundTransaction struct {
	shared.BaseAggregateRoot
	RefundNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	OrderNumber  string                  `gorm:"type:varchar(50);not null"`
	OrderKind    OrderKind               `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal         `gorm:"type:decimal(18,2);not null"` // cash refunded
	Method       PaymentMethod           `gorm:"type:varchar(30);not null"`
	Lines        []RefundTransactionLine `gorm:"foreignKey:RefundID"`
	OperatorID   uuid.UUID               `gorm:"type:uuid;not null"`
	Reason       string                  `gorm:"type:varchar(500)"`
	IssuedAt     time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (RefundTransaction) TableName() string {
	return "refund_transactions"
}

// NewRefundTransaction creates a refund record for an order. A refund may be
// cash-only (no lines) or carry returned goods quantities.
func NewRefundTransaction(refundNumber string, order *Order, amount decimal.Decimal, method PaymentMethod, operatorID uuid.UUID, reason string) (*RefundTransaction, error) {
	if refundNumber == "" {
		return nil, shared.NewDomainError("INVALID_REFUND_NUMBER", "Refund number cannot be empty")
	}
	if order == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order cannot be nil")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot be negative")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if operatorID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	refund := &RefundTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RefundNumber:      refundNumber,
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		OrderKind:         order.Kind,
		Amount:            amount,
		Method:            method,
		Lines:             make([]RefundTransactionLine, 0),
		OperatorID:        operatorID,
		Reason:            reason,
		IssuedAt:          time.Now(),
	}

	refund.AddDomainEvent(NewRefundIssuedEvent(refund))

	return refund, nil
}

// AddLine records a returned quantity against an order line
func (r *RefundTransaction) AddLine(orderLine *OrderLine, quantity decimal.Decimal) error {
	if orderLine == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Refund quantity must be positive")
	}

	r.Lines = append(r.Lines, RefundTransactionLine{
		BaseEntity:  shared.NewBaseEntity(),
		RefundID:    r.ID,
		OrderLineID: orderLine.ID,
		ProductID:   orderLine.ProductID,
		BatchID:     orderLine.BatchID,
		BatchNumber: orderLine.BatchNumber,
		Quantity:    quantity,
	})
	r.UpdatedAt = time.Now()

	return nil
}

// HasGoods returns true if the refund carries returned quantities
func (r *RefundTransaction) HasGoods() bool {
	return len(r.Lines) > 0
}

// TotalQuantity returns the sum of returned quantities
func (r *RefundTransaction) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}
