package trade

// OrderKind distinguishes sales orders from purchase orders. Both kinds share
// the same aggregate, lifecycle and ledger; the kind decides which direction
// goods and cash flow.
type OrderKind string

const (
	OrderKindSales    OrderKind = "SALES"
	OrderKindPurchase OrderKind = "PURCHASE"
)

// IsValid checks if the kind is a valid OrderKind
func (k OrderKind) IsValid() bool {
	switch k {
	case OrderKindSales, OrderKindPurchase:
		return true
	}
	return false
}

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	return string(k)
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	// OrderStatusPending is the initial status: goods are promised but not yet moved
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusDone means the order was fulfilled and stock has moved
	OrderStatusDone OrderStatus = "DONE"
	// OrderStatusCancelled is terminal and reachable only through cancellation
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// DONE can move back to PENDING to unwind a fulfillment; CANCELLED is
// terminal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusDone || target == OrderStatusCancelled
	case OrderStatusDone:
		return target == OrderStatusPending || target == OrderStatusCancelled
	case OrderStatusCancelled:
		return false
	}
	return false
}

// PaymentStatus is derived from the payment ledger, never set directly
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}
