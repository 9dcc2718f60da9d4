package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// PaymentType represents the direction of a ledger entry
type PaymentType string

const (
	// PaymentTypePayment is cash received (sales) or paid out (purchase)
	PaymentTypePayment PaymentType = "PAYMENT"
	// PaymentTypeRefund is cash flowing back the other way
	PaymentTypeRefund PaymentType = "REFUND"
)

// IsValid checks if the type is a valid PaymentType
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypePayment, PaymentTypeRefund:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// PaymentMethod represents how a payment was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodWallet       PaymentMethod = "WALLET"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodWallet:
		return true
	}
	return false
}

// PaymentRecord is one immutable row of an order's payment ledger. Rows are
// only ever appended; the order's paid and refunded amounts are folds over
// this ledger, not stored truth of their own.
type PaymentRecord struct {
	shared.BaseEntity
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_order"`
	Type       PaymentType     `gorm:"type:varchar(20);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"` // always positive; Type carries the direction
	Method     PaymentMethod   `gorm:"type:varchar(30);not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	OperatorID uuid.UUID       `gorm:"type:uuid;not null"`
	Note       string          `gorm:"type:varchar(500)"`
	PaidAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// NewPaymentRecord creates a new ledger row. Amounts are positive magnitudes.
func NewPaymentRecord(orderID uuid.UUID, paymentType PaymentType, amount decimal.Decimal, method PaymentMethod, operatorID uuid.UUID) (*PaymentRecord, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Invalid payment type")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if operatorID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	return &PaymentRecord{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Type:       paymentType,
		Amount:     amount,
		Method:     method,
		OperatorID: operatorID,
		PaidAt:     time.Now(),
	}, nil
}

// WithReference sets an external reference (cheque number, transfer ID)
func (p *PaymentRecord) WithReference(reference string) *PaymentRecord {
	p.Reference = reference
	return p
}

// WithNote sets the free-text note for the record
func (p *PaymentRecord) WithNote(note string) *PaymentRecord {
	p.Note = note
	return p
}

// SumPayments folds the PAYMENT rows of a ledger
func SumPayments(records []PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Type == PaymentTypePayment {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// SumRefunds folds the REFUND rows of a ledger
func SumRefunds(records []PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Type == PaymentTypeRefund {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// NetCash returns payments minus refunds over a ledger
func NetCash(records []PaymentRecord) decimal.Decimal {
	return SumPayments(records).Sub(SumRefunds(records))
}
