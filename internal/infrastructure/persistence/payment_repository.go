package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM.
// The ledger is append-only; there are no update or delete paths.
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// Append persists a new ledger row
func (r *GormPaymentRecordRepository) Append(ctx context.Context, record *trade.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByOrder returns all ledger rows for an order, oldest first
func (r *GormPaymentRecordRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.PaymentRecord, error) {
	var records []trade.PaymentRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("paid_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure GormPaymentRecordRepository implements PaymentRecordRepository
var _ trade.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
