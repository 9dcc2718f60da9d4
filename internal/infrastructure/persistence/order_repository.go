package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with lines and ledger rows loaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its business number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC")
		}).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ExistsByOrderNumber checks whether an order number is already taken
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindRecent returns orders of a kind ordered by creation time, newest first
func (r *GormOrderRepository) FindRecent(ctx context.Context, kind trade.OrderKind, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	return r.findPaginated(ctx, filter, "kind = ?", kind)
}

// FindByCounterparty returns orders for a counterparty, newest first
func (r *GormOrderRepository) FindByCounterparty(ctx context.Context, counterpartyID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	return r.findPaginated(ctx, filter, "counterparty_id = ?", counterpartyID)
}

// FindByDateRange returns non-cancelled orders of a kind within [from, to)
func (r *GormOrderRepository) FindByDateRange(ctx context.Context, kind trade.OrderKind, from, to time.Time) ([]trade.Order, error) {
	var orders []trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("kind = ? AND status <> ? AND order_date >= ? AND order_date < ?",
			kind, trade.OrderStatusCancelled, from, to).
		Order("order_date ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindWithBalanceDueBetween returns orders that still owe money and whose
// due date falls within [from, to)
func (r *GormOrderRepository) FindWithBalanceDueBetween(ctx context.Context, from, to time.Time) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.db.WithContext(ctx).
		Where("status <> ? AND paid_amount - refunded_amount < total_amount AND due_date < ?",
			trade.OrderStatusCancelled, to)
	if !from.IsZero() {
		query = query.Where("due_date >= ?", from)
	}
	if err := query.Order("due_date ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates an order with its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ledger rows go through the payment repository, never through the order
		if err := tx.Omit("Payments").Save(order).Error; err != nil {
			return err
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock updates an order with an optimistic version check.
// A stale version surfaces as a concurrency conflict.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct {
			Version int
		}
		if err := tx.Model(&trade.Order{}).
			Where("id = ?", order.ID).
			Select("version").
			Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != order.Version {
			return shared.ErrConcurrencyConflict
		}

		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&trade.Order{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]interface{}{
				"due_date":                 order.DueDate,
				"subtotal":                 order.Subtotal,
				"vat_amount":               order.VATAmount,
				"manufacturing_tax_amount": order.ManufacturingTaxAmount,
				"total_amount":             order.TotalAmount,
				"paid_amount":              order.PaidAmount,
				"refunded_amount":          order.RefundedAmount,
				"status":                   order.Status,
				"payment_status":           order.PaymentStatus,
				"note":                     order.Note,
				"done_at":                  order.DoneAt,
				"cancelled_at":             order.CancelledAt,
				"cancel_reason":            order.CancelReason,
				"version":                  order.Version,
				"updated_at":               order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// findPaginated runs a filtered, paginated query over orders
func (r *GormOrderRepository) findPaginated(ctx context.Context, filter shared.Filter, condition string, args ...interface{}) (*shared.Paginated[trade.Order], error) {
	base := r.db.WithContext(ctx).Model(&trade.Order{}).Where(condition, args...)
	base = applySearch(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var orders []trade.Order
	if err := base.
		Preload("Lines").
		Order(orderClause(filter)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, page, pageSize)
	return &result, nil
}

func applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR counterparty_name LIKE ?", pattern, pattern)
	}
	return query
}

// sortableOrderColumns bounds what callers may sort by; anything else falls
// back to creation time. OrderBy reaches the SQL text, so it is never
// interpolated unchecked.
var sortableOrderColumns = map[string]bool{
	"created_at":        true,
	"updated_at":        true,
	"order_date":        true,
	"due_date":          true,
	"order_number":      true,
	"counterparty_name": true,
	"total_amount":      true,
	"status":            true,
}

func orderClause(filter shared.Filter) string {
	if !sortableOrderColumns[filter.OrderBy] {
		return "created_at DESC"
	}
	dir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		dir = "DESC"
	}
	return filter.OrderBy + " " + dir
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
