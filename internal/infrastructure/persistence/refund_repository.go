package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// GormRefundRepository implements RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByID finds a refund by ID with its lines loaded
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.RefundTransaction, error) {
	var refund trade.RefundTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&refund, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindByOrder returns all refunds recorded against an order, oldest first
func (r *GormRefundRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.RefundTransaction, error) {
	var refunds []trade.RefundTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("issued_at ASC").
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// Save creates a refund with its lines
func (r *GormRefundRepository) Save(ctx context.Context, refund *trade.RefundTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(refund).Error; err != nil {
			return err
		}
		for i := range refund.Lines {
			refund.Lines[i].RefundID = refund.ID
			if err := tx.Create(&refund.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormRefundRepository implements RefundRepository
var _ trade.RefundRepository = (*GormRefundRepository)(nil)
