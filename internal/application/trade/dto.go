package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// CreateOrderLineRequest is one product line of an order creation request.
// UnitPrice falls back to the product's default price (sales) or default cost
// (purchase) when omitted.
type CreateOrderLineRequest struct {
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	BatchID     *uuid.UUID       `json:"batch_id,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Note        string           `json:"note,omitempty" validate:"max=500"`
}

// CreateOrderRequest is the request to create a sales or purchase order
type CreateOrderRequest struct {
	Kind                  trade.OrderKind          `json:"kind" validate:"required,oneof=SALES PURCHASE"`
	CounterpartyID        uuid.UUID                `json:"counterparty_id" validate:"required"`
	Lines                 []CreateOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	TaxInclusive          bool                     `json:"tax_inclusive"`
	ApplyVAT              bool                     `json:"apply_vat"`
	ApplyManufacturingTax bool                     `json:"apply_manufacturing_tax"`
	DueDate               *time.Time               `json:"due_date,omitempty"`
	Note                  string                   `json:"note,omitempty" validate:"max=1000"`
	// Paid records a full payment in the same transaction as the creation
	Paid          bool                `json:"paid"`
	PaymentMethod trade.PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=CASH BANK_TRANSFER CHEQUE WALLET"`
	// ReceiveOnCreate receives purchase stock immediately and fulfills the
	// order in the same transaction; ignored on sales orders
	ReceiveOnCreate bool `json:"receive_on_create"`
}

// UpdateStatusRequest moves an order between PENDING and DONE
type UpdateStatusRequest struct {
	Status trade.OrderStatus `json:"status" validate:"required,oneof=PENDING DONE CANCELLED"`
}

// PaymentRequest records a payment against an order
type PaymentRequest struct {
	Amount    decimal.Decimal     `json:"amount" validate:"required"`
	Method    trade.PaymentMethod `json:"method" validate:"required,oneof=CASH BANK_TRANSFER CHEQUE WALLET"`
	Reference string              `json:"reference,omitempty" validate:"max=100"`
	Note      string              `json:"note,omitempty" validate:"max=500"`
}

// RefundLineRequest returns a quantity against one order line
type RefundLineRequest struct {
	LineID   uuid.UUID       `json:"line_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// RefundRequest records a refund: cash back, returned goods, or both
type RefundRequest struct {
	Amount decimal.Decimal     `json:"amount"`
	Method trade.PaymentMethod `json:"method" validate:"required,oneof=CASH BANK_TRANSFER CHEQUE WALLET"`
	Lines  []RefundLineRequest `json:"lines,omitempty" validate:"dive"`
	Reason string              `json:"reason,omitempty" validate:"max=500"`
}

// CancelRequest cancels an order
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// OrderLineResponse is the response representation of an order line
type OrderLineResponse struct {
	ID                     uuid.UUID       `json:"id"`
	ProductID              uuid.UUID       `json:"product_id"`
	ProductName            string          `json:"product_name"`
	ProductCode            string          `json:"product_code"`
	BatchID                *uuid.UUID      `json:"batch_id,omitempty"`
	BatchNumber            string          `json:"batch_number"`
	Quantity               decimal.Decimal `json:"quantity"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	VATAmount              decimal.Decimal `json:"vat_amount"`
	ManufacturingTaxAmount decimal.Decimal `json:"manufacturing_tax_amount"`
	LineTotal              decimal.Decimal `json:"line_total"`
	RefundedQuantity       decimal.Decimal `json:"refunded_quantity"`
}

// PaymentRecordResponse is the response representation of a ledger row
type PaymentRecordResponse struct {
	ID        uuid.UUID           `json:"id"`
	Type      trade.PaymentType   `json:"type"`
	Amount    decimal.Decimal     `json:"amount"`
	Method    trade.PaymentMethod `json:"method"`
	Reference string              `json:"reference,omitempty"`
	PaidAt    time.Time           `json:"paid_at"`
}

// OrderResponse is the full response representation of an order
type OrderResponse struct {
	ID                     uuid.UUID               `json:"id"`
	Kind                   trade.OrderKind         `json:"kind"`
	OrderNumber            string                  `json:"order_number"`
	CounterpartyID         uuid.UUID               `json:"counterparty_id"`
	CounterpartyName       string                  `json:"counterparty_name"`
	OrderDate              time.Time               `json:"order_date"`
	DueDate                *time.Time              `json:"due_date,omitempty"`
	TaxInclusive           bool                    `json:"tax_inclusive"`
	ApplyVAT               bool                    `json:"apply_vat"`
	ApplyManufacturingTax  bool                    `json:"apply_manufacturing_tax"`
	Subtotal               decimal.Decimal         `json:"subtotal"`
	VATAmount              decimal.Decimal         `json:"vat_amount"`
	ManufacturingTaxAmount decimal.Decimal         `json:"manufacturing_tax_amount"`
	TotalAmount            decimal.Decimal         `json:"total_amount"`
	PaidAmount             decimal.Decimal         `json:"paid_amount"`
	RefundedAmount         decimal.Decimal         `json:"refunded_amount"`
	RemainingAmount        decimal.Decimal         `json:"remaining_amount"`
	Status                 trade.OrderStatus       `json:"status"`
	PaymentStatus          trade.PaymentStatus     `json:"payment_status"`
	IsOverdue              bool                    `json:"is_overdue"`
	Lines                  []OrderLineResponse     `json:"lines"`
	Payments               []PaymentRecordResponse `json:"payments"`
	Note                   string                  `json:"note,omitempty"`
	CancelReason           string                  `json:"cancel_reason,omitempty"`
	CreatedAt              time.Time               `json:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

// RefundResponse is the response representation of a refund transaction
type RefundResponse struct {
	ID           uuid.UUID       `json:"id"`
	RefundNumber string          `json:"refund_number"`
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason,omitempty"`
	IssuedAt     time.Time       `json:"issued_at"`
}

// ToOrderResponse converts an order aggregate to its response representation
func ToOrderResponse(order *trade.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = OrderLineResponse{
			ID:                     line.ID,
			ProductID:              line.ProductID,
			ProductName:            line.ProductName,
			ProductCode:            line.ProductCode,
			BatchID:                line.BatchID,
			BatchNumber:            line.BatchNumber,
			Quantity:               line.Quantity,
			UnitPrice:              line.UnitPrice,
			Subtotal:               line.Subtotal,
			VATAmount:              line.VATAmount,
			ManufacturingTaxAmount: line.ManufacturingTaxAmount,
			LineTotal:              line.LineTotal,
			RefundedQuantity:       line.RefundedQuantity,
		}
	}

	payments := make([]PaymentRecordResponse, len(order.Payments))
	for i, record := range order.Payments {
		payments[i] = PaymentRecordResponse{
			ID:        record.ID,
			Type:      record.Type,
			Amount:    record.Amount,
			Method:    record.Method,
			Reference: record.Reference,
			PaidAt:    record.PaidAt,
		}
	}

	return OrderResponse{
		ID:                     order.ID,
		Kind:                   order.Kind,
		OrderNumber:            order.OrderNumber,
		CounterpartyID:         order.CounterpartyID,
		CounterpartyName:       order.CounterpartyName,
		OrderDate:              order.OrderDate,
		DueDate:                order.DueDate,
		TaxInclusive:           order.TaxInclusive,
		ApplyVAT:               order.ApplyVAT,
		ApplyManufacturingTax:  order.ApplyManufacturingTax,
		Subtotal:               order.Subtotal,
		VATAmount:              order.VATAmount,
		ManufacturingTaxAmount: order.ManufacturingTaxAmount,
		TotalAmount:            order.TotalAmount,
		PaidAmount:             order.PaidAmount,
		RefundedAmount:         order.RefundedAmount,
		RemainingAmount:        order.RemainingAmount(),
		Status:                 order.Status,
		PaymentStatus:          order.PaymentStatus,
		IsOverdue:              order.IsOverdue(time.Now()),
		Lines:                  lines,
		Payments:               payments,
		Note:                   order.Note,
		CancelReason:           order.CancelReason,
		CreatedAt:              order.CreatedAt,
		UpdatedAt:              order.UpdatedAt,
	}
}

// ToRefundResponse converts a refund transaction to its response representation
func ToRefundResponse(refund *trade.RefundTransaction) RefundResponse {
	return RefundResponse{
		ID:           refund.ID,
		RefundNumber: refund.RefundNumber,
		OrderID:      refund.OrderID,
		OrderNumber:  refund.OrderNumber,
		Amount:       refund.Amount,
		Reason:       refund.Reason,
		IssuedAt:     refund.IssuedAt,
	}
}
