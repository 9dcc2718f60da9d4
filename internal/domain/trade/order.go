package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared/valueobject"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/tax"
)

// OrderLine represents one product line of an order. The tax breakdown is
// computed once when the line is added and frozen; line totals never change
// after that, refunds only accumulate RefundedQuantity.
type OrderLine struct {
	shared.BaseEntity
	OrderID                uuid.UUID       `gorm:"type:uuid;not null;index:idx_order_line_order"`
	ProductID              uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName            string          `gorm:"type:varchar(200);not null"`
	ProductCode            string          `gorm:"type:varchar(50)"`
	BatchID                *uuid.UUID      `gorm:"type:uuid"`
	BatchNumber            string          `gorm:"type:varchar(100);not null;default:''"`
	Quantity               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VATAmount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ManufacturingTaxAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefundedQuantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Note                   string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// NewOrderLine creates a new order line with its tax breakdown
func NewOrderLine(orderID, productID uuid.UUID, productName, productCode string, batchID *uuid.UUID, batchNumber string, quantity, unitPrice decimal.Decimal, flags tax.Flags, rates tax.Rates) (*OrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}

	breakdown, err := tax.Compute(unitPrice, quantity, flags, rates)
	if err != nil {
		return nil, err
	}

	return &OrderLine{
		BaseEntity:             shared.NewBaseEntity(),
		OrderID:                orderID,
		ProductID:              productID,
		ProductName:            productName,
		ProductCode:            productCode,
		BatchID:                batchID,
		BatchNumber:            batchNumber,
		Quantity:               quantity,
		UnitPrice:              unitPrice,
		Subtotal:               breakdown.Subtotal,
		VATAmount:              breakdown.VAT,
		ManufacturingTaxAmount: breakdown.ManufacturingTax,
		LineTotal:              breakdown.Total,
		RefundedQuantity:       decimal.Zero,
	}, nil
}

// Breakdown returns the line's frozen tax breakdown
func (l *OrderLine) Breakdown() tax.LineTax {
	return tax.LineTax{
		Subtotal:         l.Subtotal,
		VAT:              l.VATAmount,
		ManufacturingTax: l.ManufacturingTaxAmount,
		Total:            l.LineTotal,
	}
}

// RemainingQuantity returns the quantity not yet refunded
func (l *OrderLine) RemainingQuantity() decimal.Decimal {
	return l.Quantity.Sub(l.RefundedQuantity)
}

// IsFullyRefunded returns true if every unit on the line was refunded
func (l *OrderLine) IsFullyRefunded() bool {
	return l.RefundedQuantity.GreaterThanOrEqual(l.Quantity)
}

func (l *OrderLine) addRefundedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Refund quantity must be positive")
	}
	if quantity.GreaterThan(l.RemainingQuantity()) {
		return shared.NewDomainError("REFUND_EXCEEDS_QUANTITY",
			fmt.Sprintf("Refund quantity %s exceeds remaining quantity %s", quantity, l.RemainingQuantity()))
	}
	l.RefundedQuantity = l.RefundedQuantity.Add(quantity)
	l.UpdatedAt = time.Now()
	return nil
}

// Order is the aggregate root for both sales and purchase orders. One order
// carries its lines, its payment ledger rows and the derived payment status;
// cash and tax totals are always recomputed from the parts, never edited
// directly.
type Order struct {
	shared.BaseAggregateRoot
	Kind             OrderKind  `gorm:"type:varchar(20);not null;index"`
	OrderNumber      string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	CounterpartyID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CounterpartyName string     `gorm:"type:varchar(200);not null"` // snapshot at creation
	OrderDate        time.Time  `gorm:"not null;index"`
	DueDate          *time.Time `gorm:"index"`

	TaxInclusive          bool            `gorm:"not null;default:false"`
	ApplyVAT              bool            `gorm:"not null;default:false"`
	ApplyManufacturingTax bool            `gorm:"not null;default:false"`
	VATRate               decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	ManufacturingTaxRate  decimal.Decimal `gorm:"type:decimal(8,4);not null"`

	Currency               valueobject.Currency `gorm:"type:varchar(3);not null;default:'EGP'"`
	Subtotal               decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	VATAmount              decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	ManufacturingTaxAmount decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	TotalAmount            decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	PaidAmount             decimal.Decimal      `gorm:"type:decimal(18,2);not null"` // ledger fold snapshot
	RefundedAmount         decimal.Decimal      `gorm:"type:decimal(18,2);not null"` // ledger fold snapshot

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null"`

	Lines    []OrderLine     `gorm:"foreignKey:OrderID"`
	Payments []PaymentRecord `gorm:"foreignKey:OrderID"`

	Note         string     `gorm:"type:varchar(1000)"`
	DoneAt       *time.Time `gorm:""`
	CancelledAt  *time.Time `gorm:""`
	CancelReason string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in PENDING status. Tax flags and rates are
// captured at creation and apply to every line added afterwards.
func NewOrder(kind OrderKind, orderNumber string, counterpartyID uuid.UUID, counterpartyName string, flags tax.Flags, rates tax.Rates) (*Order, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_KIND", "Invalid order kind")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty ID cannot be empty")
	}
	if counterpartyName == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY_NAME", "Counterparty name cannot be empty")
	}
	if rates.VAT.IsNegative() || rates.ManufacturingTax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rates cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		Kind:                   kind,
		OrderNumber:            orderNumber,
		CounterpartyID:         counterpartyID,
		CounterpartyName:       counterpartyName,
		OrderDate:              time.Now(),
		TaxInclusive:           flags.Inclusive,
		ApplyVAT:               flags.ApplyVAT,
		ApplyManufacturingTax:  flags.ApplyManufacturingTax,
		VATRate:                rates.VAT,
		ManufacturingTaxRate:   rates.ManufacturingTax,
		Currency:               valueobject.DefaultCurrency,
		Subtotal:               decimal.Zero,
		VATAmount:              decimal.Zero,
		ManufacturingTaxAmount: decimal.Zero,
		TotalAmount:            decimal.Zero,
		PaidAmount:             decimal.Zero,
		RefundedAmount:         decimal.Zero,
		Status:                 OrderStatusPending,
		PaymentStatus:          PaymentStatusPending,
		Lines:                  make([]OrderLine, 0),
		Payments:               make([]PaymentRecord, 0),
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// TaxFlags returns the flags captured at order creation
func (o *Order) TaxFlags() tax.Flags {
	return tax.Flags{
		Inclusive:             o.TaxInclusive,
		ApplyVAT:              o.ApplyVAT,
		ApplyManufacturingTax: o.ApplyManufacturingTax,
	}
}

// TaxRates returns the rates captured at order creation
func (o *Order) TaxRates() tax.Rates {
	return tax.Rates{
		VAT:              o.VATRate,
		ManufacturingTax: o.ManufacturingTaxRate,
	}
}

// AddLine adds a product line to the order.
// Only allowed in PENDING status.
func (o *Order) AddLine(productID uuid.UUID, productName, productCode string, batchID *uuid.UUID, batchNumber string, quantity, unitPrice decimal.Decimal) (*OrderLine, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-pending order")
	}

	for _, line := range o.Lines {
		if line.ProductID == productID && line.BatchNumber == batchNumber {
			return nil, shared.NewDomainError("DUPLICATE_LINE", "Product and batch already exist on this order")
		}
	}

	line, err := NewOrderLine(o.ID, productID, productName, productCode, batchID, batchNumber, quantity, unitPrice, o.TaxFlags(), o.TaxRates())
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return line, nil
}

// RemoveLine removes a line from the order.
// Only allowed in PENDING status.
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-pending order")
	}

	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// SetDueDate sets the payment due date
func (o *Order) SetDueDate(due time.Time) {
	o.DueDate = &due
	o.UpdatedAt = time.Now()
}

// SetNote sets the order note
func (o *Order) SetNote(note string) {
	o.Note = note
	o.UpdatedAt = time.Now()
}

// ChangeStatus moves the order between PENDING and DONE. Setting the current
// status again is an idempotent no-op reported through the changed flag.
// CANCELLED is never reachable through this path.
func (o *Order) ChangeStatus(target OrderStatus) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	}
	if target == o.Status {
		return false, nil
	}
	if target == OrderStatusCancelled {
		return false, shared.NewDomainError("INVALID_TRANSITION", "Cancellation must go through the cancel operation")
	}
	if !o.Status.CanTransitionTo(target) {
		return false, shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	now := time.Now()
	switch target {
	case OrderStatusDone:
		o.Status = OrderStatusDone
		o.DoneAt = &now
		o.AddDomainEvent(NewOrderDoneEvent(o))
	case OrderStatusPending:
		o.Status = OrderStatusPending
		o.DoneAt = nil
		o.AddDomainEvent(NewOrderReopenedEvent(o))
	}
	o.UpdatedAt = now

	return true, nil
}

// Cancel moves the order to the terminal CANCELLED status. The financial and
// stock preconditions are enforced by the application service; the aggregate
// only guards the transition itself.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	wasDone := o.Status == OrderStatusDone
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, wasDone))

	return nil
}

// RecordPayment appends a PAYMENT row to the ledger and rederives the payment
// status. The resulting net cash may never exceed the order total.
func (o *Order) RecordPayment(amount decimal.Decimal, method PaymentMethod, operatorID uuid.UUID) (*PaymentRecord, error) {
	if o.Status == OrderStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot record payments on a cancelled order")
	}

	record, err := NewPaymentRecord(o.ID, PaymentTypePayment, amount, method, operatorID)
	if err != nil {
		return nil, err
	}
	if NetCash(o.Payments).Add(amount).GreaterThan(o.TotalAmount) {
		return nil, shared.NewDomainError("OVERPAYMENT", "Payment would exceed the order total")
	}

	o.Payments = append(o.Payments, *record)
	if err := o.RecalculatePaymentStatus(); err != nil {
		return nil, err
	}
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewPaymentRecordedEvent(o, record))

	return record, nil
}

// RecordRefund appends a REFUND row to the ledger. A refund can never return
// more cash than the ledger currently holds.
func (o *Order) RecordRefund(amount decimal.Decimal, method PaymentMethod, operatorID uuid.UUID) (*PaymentRecord, error) {
	record, err := NewPaymentRecord(o.ID, PaymentTypeRefund, amount, method, operatorID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(NetCash(o.Payments)) {
		return nil, shared.NewDomainError("REFUND_EXCEEDS_NET_CASH", "Refund amount exceeds net cash received")
	}

	o.Payments = append(o.Payments, *record)
	if err := o.RecalculatePaymentStatus(); err != nil {
		return nil, err
	}
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewPaymentRecordedEvent(o, record))

	return record, nil
}

// ApplyLineRefund accumulates a refunded quantity on one line
func (o *Order) ApplyLineRefund(lineID uuid.UUID, quantity decimal.Decimal) error {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			if err := o.Lines[idx].addRefundedQuantity(quantity); err != nil {
				return err
			}
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// RecalculatePaymentStatus rederives the payment fields from the ledger rows
// loaded on the aggregate. Net cash above the order total is a corrupt ledger
// and surfaces as an error rather than a status.
func (o *Order) RecalculatePaymentStatus() error {
	o.PaidAmount = SumPayments(o.Payments)
	o.RefundedAmount = SumRefunds(o.Payments)

	netCash := o.PaidAmount.Sub(o.RefundedAmount)
	if netCash.GreaterThan(o.TotalAmount) {
		return shared.NewDomainError("OVERPAYMENT", "Net cash exceeds the order total")
	}

	switch {
	case netCash.Equal(o.TotalAmount) && o.TotalAmount.IsPositive():
		o.PaymentStatus = PaymentStatusPaid
	case netCash.IsPositive():
		o.PaymentStatus = PaymentStatusPartiallyPaid
	default:
		o.PaymentStatus = PaymentStatusPending
	}

	return nil
}

// recalculateTotals rebuilds the order totals as the field-wise sum of the
// line breakdowns
func (o *Order) recalculateTotals() {
	total := tax.LineTax{
		Subtotal:         decimal.Zero,
		VAT:              decimal.Zero,
		ManufacturingTax: decimal.Zero,
		Total:            decimal.Zero,
	}
	for _, line := range o.Lines {
		total = total.Add(line.Breakdown())
	}
	o.Subtotal = total.Subtotal
	o.VATAmount = total.VAT
	o.ManufacturingTaxAmount = total.ManufacturingTax
	o.TotalAmount = total.Total
}

// NetCashAmount returns payments minus refunds
func (o *Order) NetCashAmount() decimal.Decimal {
	return o.PaidAmount.Sub(o.RefundedAmount)
}

// RemainingAmount returns the unpaid part of the total, floored at zero
func (o *Order) RemainingAmount() decimal.Decimal {
	remaining := o.TotalAmount.Sub(o.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// AllQuantitiesRefunded returns true when every line was fully refunded
func (o *Order) AllQuantitiesRefunded() bool {
	for _, line := range o.Lines {
		if !line.IsFullyRefunded() {
			return false
		}
	}
	return true
}

// IsOverdue returns true if the order still owes money past its due date
func (o *Order) IsOverdue(now time.Time) bool {
	if o.DueDate == nil || o.Status == OrderStatusCancelled {
		return false
	}
	return now.After(*o.DueDate) && o.RemainingAmount().IsPositive()
}

// GetLine returns a line by its ID
func (o *Order) GetLine(lineID uuid.UUID) *OrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// LineCount returns the number of lines on the order
func (o *Order) LineCount() int {
	return len(o.Lines)
}

// IsPending returns true if the order is in pending status
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsDone returns true if the order was fulfilled
func (o *Order) IsDone() bool {
	return o.Status == OrderStatusDone
}

// IsCancelled returns true if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// GetTotalAmountMoney returns the total as Money
func (o *Order) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(o.TotalAmount)
}

// GetRemainingAmountMoney returns the remaining amount as Money
func (o *Order) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(o.RemainingAmount())
}
