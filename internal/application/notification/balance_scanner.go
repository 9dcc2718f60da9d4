package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// BalanceAlert flags an order that still owes money around its due date
type BalanceAlert struct {
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	Kind             trade.OrderKind `json:"kind"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	DueDate          time.Time       `json:"due_date"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Overdue          bool            `json:"overdue"`
}

// BalanceScanner finds orders with outstanding balances that are overdue or
// coming due within a horizon. It is meant to run periodically and feed
// whatever channel delivers the reminders.
type BalanceScanner struct {
	orders  trade.OrderRepository
	horizon time.Duration
	logger  *zap.Logger
}

// NewBalanceScanner creates a scanner with the given look-ahead horizon
func NewBalanceScanner(orders trade.OrderRepository, horizon time.Duration, logger *zap.Logger) *BalanceScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceScanner{
		orders:  orders,
		horizon: horizon,
		logger:  logger,
	}
}

// Scan returns the alerts as of now: overdue balances first, then balances
// due within the horizon.
func (s *BalanceScanner) Scan(ctx context.Context, now time.Time) ([]BalanceAlert, error) {
	overdue, err := s.orders.FindWithBalanceDueBetween(ctx, time.Time{}, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.orders.FindWithBalanceDueBetween(ctx, now, now.Add(s.horizon))
	if err != nil {
		return nil, err
	}

	alerts := make([]BalanceAlert, 0, len(overdue)+len(upcoming))
	for i := range overdue {
		alerts = append(alerts, toAlert(&overdue[i], true))
	}
	for i := range upcoming {
		alerts = append(alerts, toAlert(&upcoming[i], false))
	}

	s.logger.Info("balance scan completed",
		zap.Int("overdue", len(overdue)),
		zap.Int("upcoming", len(upcoming)),
	)

	return alerts, nil
}

func toAlert(order *trade.Order, overdue bool) BalanceAlert {
	return BalanceAlert{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		Kind:             order.Kind,
		CounterpartyID:   order.CounterpartyID,
		CounterpartyName: order.CounterpartyName,
		DueDate:          *order.DueDate,
		RemainingAmount:  order.RemainingAmount(),
		Overdue:          overdue,
	}
}
