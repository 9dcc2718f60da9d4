package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// GormNumberGenerator issues sequential business numbers by scanning the
// highest existing number per year. Collisions under concurrent creation are
// resolved by incrementing and retrying a bounded number of times.
// Format: SO-YYYY-NNNNN, PO-YYYY-NNNNN, RF-YYYY-NNNNN.
type GormNumberGenerator struct {
	db          *gorm.DB
	maxAttempts int
}

// NewGormNumberGenerator creates a new GormNumberGenerator
func NewGormNumberGenerator(db *gorm.DB, maxAttempts int) *GormNumberGenerator {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &GormNumberGenerator{db: db, maxAttempts: maxAttempts}
}

// NextOrderNumber generates the next order number for a kind
func (g *GormNumberGenerator) NextOrderNumber(ctx context.Context, kind trade.OrderKind) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", orderNumberPrefix(kind), time.Now().Year())

	var lastOrder trade.Order
	err := g.db.WithContext(ctx).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	next := parseSequence(lastOrder.OrderNumber) + 1
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%05d", prefix, next)

		var count int64
		if err := g.db.WithContext(ctx).
			Model(&trade.Order{}).
			Where("order_number = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		next++
	}

	return "", shared.NewDomainError("ORDER_NUMBER_EXHAUSTED",
		fmt.Sprintf("Could not allocate an order number after %d attempts", g.maxAttempts))
}

// NextRefundNumber generates the next refund number
func (g *GormNumberGenerator) NextRefundNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("RF-%d-", time.Now().Year())

	var lastRefund trade.RefundTransaction
	err := g.db.WithContext(ctx).
		Where("refund_number LIKE ?", prefix+"%").
		Order("refund_number DESC").
		First(&lastRefund).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	next := parseSequence(lastRefund.RefundNumber) + 1
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%05d", prefix, next)

		var count int64
		if err := g.db.WithContext(ctx).
			Model(&trade.RefundTransaction{}).
			Where("refund_number = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		next++
	}

	return "", shared.NewDomainError("REFUND_NUMBER_EXHAUSTED",
		fmt.Sprintf("Could not allocate a refund number after %d attempts", g.maxAttempts))
}

func orderNumberPrefix(kind trade.OrderKind) string {
	if kind == trade.OrderKindPurchase {
		return "PO"
	}
	return "SO"
}

// parseSequence extracts the trailing sequence from a PREFIX-YYYY-NNNNN number.
// Anything unparseable counts as zero.
func parseSequence(number string) int64 {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return 0
	}
	var seq int64
	if _, err := fmt.Sscanf(parts[2], "%d", &seq); err != nil {
		return 0
	}
	return seq
}

// Ensure GormNumberGenerator implements NumberGenerator
var _ trade.NumberGenerator = (*GormNumberGenerator)(nil)
