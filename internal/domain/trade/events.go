package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeOrder             = "Order"
	AggregateTypeRefundTransaction = "RefundTransaction"
)

// Event type constants
const (
	EventTypeOrderCreated    = "OrderCreated"
	EventTypeOrderDone       = "OrderDone"
	EventTypeOrderReopened   = "OrderReopened"
	EventTypeOrderCancelled  = "OrderCancelled"
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypeRefundIssued    = "RefundIssued"
)

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	Kind             OrderKind `json:"kind"`
	CounterpartyID   uuid.UUID `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		Kind:             order.Kind,
		CounterpartyID:   order.CounterpartyID,
		CounterpartyName: order.CounterpartyName,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderLineInfo represents line information carried on events
type OrderLineInfo struct {
	LineID      uuid.UUID       `json:"line_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	BatchID     *uuid.UUID      `json:"batch_id,omitempty"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func lineInfos(order *Order) []OrderLineInfo {
	infos := make([]OrderLineInfo, len(order.Lines))
	for i, line := range order.Lines {
		infos[i] = OrderLineInfo{
			LineID:      line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			BatchID:     line.BatchID,
			BatchNumber: line.BatchNumber,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal,
		}
	}
	return infos
}

// OrderDoneEvent is raised when an order is fulfilled.
// Stock moves when this event's transition is applied.
type OrderDoneEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Kind        OrderKind       `json:"kind"`
	Lines       []OrderLineInfo `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderDoneEvent creates a new OrderDoneEvent
func NewOrderDoneEvent(order *Order) *OrderDoneEvent {
	return &OrderDoneEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDone, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		Lines:           lineInfos(order),
		TotalAmount:     order.TotalAmount,
	}
}

// EventType returns the event type name
func (e *OrderDoneEvent) EventType() string {
	return EventTypeOrderDone
}

// OrderReopenedEvent is raised when a fulfilled order moves back to pending.
// The fulfillment stock movements are compensated when this transition is
// applied.
type OrderReopenedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Kind        OrderKind       `json:"kind"`
	Lines       []OrderLineInfo `json:"lines"`
}

// NewOrderReopenedEvent creates a new OrderReopenedEvent
func NewOrderReopenedEvent(order *Order) *OrderReopenedEvent {
	return &OrderReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReopened, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		Lines:           lineInfos(order),
	}
}

// EventType returns the event type name
func (e *OrderReopenedEvent) EventType() string {
	return EventTypeOrderReopened
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Kind        OrderKind `json:"kind"`
	WasDone     bool      `json:"was_done"`
	Reason      string    `json:"reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, wasDone bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		WasDone:         wasDone,
		Reason:          order.CancelReason,
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}

// PaymentRecordedEvent is raised when a ledger row is appended
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	RecordID      uuid.UUID       `json:"record_id"`
	Type          PaymentType     `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(order *Order, record *PaymentRecord) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		RecordID:        record.ID,
		Type:            record.Type,
		Amount:          record.Amount,
		PaymentStatus:   order.PaymentStatus,
	}
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// RefundIssuedEvent is raised when a refund transaction is recorded
type RefundIssuedEvent struct {
	shared.BaseDomainEvent
	RefundID     uuid.UUID       `json:"refund_id"`
	RefundNumber string          `json:"refund_number"`
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewRefundIssuedEvent creates a new RefundIssuedEvent
func NewRefundIssuedEvent(refund *RefundTransaction) *RefundIssuedEvent {
	return &RefundIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundIssued, AggregateTypeRefundTransaction, refund.ID),
		RefundID:        refund.ID,
		RefundNumber:    refund.RefundNumber,
		OrderID:         refund.OrderID,
		OrderNumber:     refund.OrderNumber,
		Amount:          refund.Amount,
	}
}

// EventType returns the event type name
func (e *RefundIssuedEvent) EventType() string {
	return EventTypeRefundIssued
}
