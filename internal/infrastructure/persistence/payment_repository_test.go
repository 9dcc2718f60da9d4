package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

func TestGormPaymentRecordRepository_AppendAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormPaymentRecordRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	operatorID := uuid.New()

	payment, err := trade.NewPaymentRecord(orderID, trade.PaymentTypePayment,
		decimal.NewFromInt(100), trade.PaymentMethodCash, operatorID)
	require.NoError(t, err)
	payment.PaidAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Append(ctx, payment))

	refund, err := trade.NewPaymentRecord(orderID, trade.PaymentTypeRefund,
		decimal.NewFromInt(25), trade.PaymentMethodCash, operatorID)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, refund.WithReference("RF-2026-00001")))

	records, err := repo.FindByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, trade.PaymentTypePayment, records[0].Type)
	assert.Equal(t, trade.PaymentTypeRefund, records[1].Type)
	assert.Equal(t, "75", trade.NetCash(records).String())

	other, err := repo.FindByOrder(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
