package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// PeriodTotals aggregates one order kind over a reporting period
type PeriodTotals struct {
	OrderCount             int             `json:"order_count"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	VATAmount              decimal.Decimal `json:"vat_amount"`
	ManufacturingTaxAmount decimal.Decimal `json:"manufacturing_tax_amount"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	PaidAmount             decimal.Decimal `json:"paid_amount"`
	RefundedAmount         decimal.Decimal `json:"refunded_amount"`
	OutstandingAmount      decimal.Decimal `json:"outstanding_amount"`
}

// SummaryResponse is the trading summary for a period
type SummaryResponse struct {
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	Sales     PeriodTotals `json:"sales"`
	Purchases PeriodTotals `json:"purchases"`
}

// SummaryService builds period summaries over the order book. Cancelled
// orders are excluded by the repository query.
type SummaryService struct {
	orders trade.OrderRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(orders trade.OrderRepository) *SummaryService {
	return &SummaryService{orders: orders}
}

// Summarize totals sales and purchases within [from, to)
func (s *SummaryService) Summarize(ctx context.Context, from, to time.Time) (*SummaryResponse, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}

	sales, err := s.totalsFor(ctx, trade.OrderKindSales, from, to)
	if err != nil {
		return nil, err
	}
	purchases, err := s.totalsFor(ctx, trade.OrderKindPurchase, from, to)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		From:      from,
		To:        to,
		Sales:     sales,
		Purchases: purchases,
	}, nil
}

func (s *SummaryService) totalsFor(ctx context.Context, kind trade.OrderKind, from, to time.Time) (PeriodTotals, error) {
	orders, err := s.orders.FindByDateRange(ctx, kind, from, to)
	if err != nil {
		return PeriodTotals{}, err
	}

	totals := PeriodTotals{
		Subtotal:               decimal.Zero,
		VATAmount:              decimal.Zero,
		ManufacturingTaxAmount: decimal.Zero,
		TotalAmount:            decimal.Zero,
		PaidAmount:             decimal.Zero,
		RefundedAmount:         decimal.Zero,
		OutstandingAmount:      decimal.Zero,
	}
	for i := range orders {
		order := &orders[i]
		totals.OrderCount++
		totals.Subtotal = totals.Subtotal.Add(order.Subtotal)
		totals.VATAmount = totals.VATAmount.Add(order.VATAmount)
		totals.ManufacturingTaxAmount = totals.ManufacturingTaxAmount.Add(order.ManufacturingTaxAmount)
		totals.TotalAmount = totals.TotalAmount.Add(order.TotalAmount)
		totals.PaidAmount = totals.PaidAmount.Add(order.PaidAmount)
		totals.RefundedAmount = totals.RefundedAmount.Add(order.RefundedAmount)
		totals.OutstandingAmount = totals.OutstandingAmount.Add(order.RemainingAmount())
	}
	return totals, nil
}
