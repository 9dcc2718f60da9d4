package trade

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/catalog"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/inventory"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/tax"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// OrderService handles the full order lifecycle: creation, status
// transitions, the payment ledger, refunds and cancellation. Every mutating
// operation runs inside one transaction scope so order state, ledger rows and
// stock movements commit together.
type OrderService struct {
	scope    TransactionScope
	numbers  trade.NumberGenerator
	rates    tax.Rates
	audit    AuditLogger
	validate *validator.Validate
}

// NewOrderService creates a new OrderService. The rates are captured onto
// each order at creation time. The audit logger receives before/after
// snapshots outside the transaction; its entries never fail an operation.
func NewOrderService(scope TransactionScope, numbers trade.NumberGenerator, rates tax.Rates, audit AuditLogger) *OrderService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &OrderService{
		scope:    scope,
		numbers:  numbers,
		rates:    rates,
		audit:    audit,
		validate: validator.New(),
	}
}

func lineBatchRef(line *trade.OrderLine) inventory.BatchRef {
	return inventory.BatchRef{
		BatchID:     line.BatchID,
		BatchNumber: line.BatchNumber,
	}
}

func movementSource(kind trade.OrderKind) inventory.SourceType {
	if kind == trade.OrderKindSales {
		return inventory.SourceTypeSalesOrder
	}
	return inventory.SourceTypePurchaseOrder
}

// Create creates a new order. Sales orders reserve stock for every line;
// purchase orders touch stock only when they are fulfilled, unless
// ReceiveOnCreate is set, which receives every line and fulfills the order in
// the same transaction. With Paid set the full total is recorded as paid.
func (s *OrderService) Create(ctx context.Context, actingUser uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if actingUser == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var response OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		counterparty, err := repos.Counterparties().FindByID(ctx, req.CounterpartyID)
		if err != nil {
			return err
		}
		if req.Kind == trade.OrderKindSales && !counterparty.CanBuy() {
			return shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty cannot appear on sales orders")
		}
		if req.Kind == trade.OrderKindPurchase && !counterparty.CanSupply() {
			return shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty cannot appear on purchase orders")
		}

		orderNumber, err := s.numbers.NextOrderNumber(ctx, req.Kind)
		if err != nil {
			return err
		}

		flags := tax.Flags{
			Inclusive:             req.TaxInclusive,
			ApplyVAT:              req.ApplyVAT,
			ApplyManufacturingTax: req.ApplyManufacturingTax,
		}
		order, err := trade.NewOrder(req.Kind, orderNumber, counterparty.ID, counterparty.Name, flags, s.rates)
		if err != nil {
			return err
		}
		if req.DueDate != nil {
			order.SetDueDate(*req.DueDate)
		}
		if req.Note != "" {
			order.SetNote(req.Note)
		}

		for _, lineReq := range req.Lines {
			product, err := repos.Products().FindByID(ctx, lineReq.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available for ordering")
			}

			unitPrice := s.defaultPrice(product, req.Kind)
			if lineReq.UnitPrice != nil {
				unitPrice = *lineReq.UnitPrice
			}

			line, err := order.AddLine(product.ID, product.Name, product.Code,
				lineReq.BatchID, strings.TrimSpace(lineReq.BatchNumber), lineReq.Quantity, unitPrice)
			if err != nil {
				return err
			}
			if lineReq.Note != "" {
				line.Note = lineReq.Note
			}
		}

		if req.Kind == trade.OrderKindPurchase && req.ReceiveOnCreate {
			if _, err := order.ChangeStatus(trade.OrderStatusDone); err != nil {
				return err
			}
		}

		var payment *trade.PaymentRecord
		if req.Paid && order.TotalAmount.IsPositive() {
			method := req.PaymentMethod
			if method == "" {
				method = trade.PaymentMethodCash
			}
			payment, err = order.RecordPayment(order.TotalAmount, method, actingUser)
			if err != nil {
				return err
			}
		}

		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if payment != nil {
			if err := repos.Payments().Append(ctx, payment); err != nil {
				return err
			}
		}

		allocator := inventory.NewAllocator(repos.Batches(), repos.Movements())
		switch {
		case order.Kind == trade.OrderKindSales:
			for idx := range order.Lines {
				line := &order.Lines[idx]
				if err := allocator.Reserve(ctx, line.ProductID, lineBatchRef(line), line.Quantity); err != nil {
					return err
				}
			}
		case order.IsDone():
			if err := s.applyFulfillment(ctx, allocator, order, actingUser); err != nil {
				return err
			}
		}

		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogCreate(ctx, "order", response.ID, actingUser, response)
	return &response, nil
}

func (s *OrderService) defaultPrice(product *catalog.Product, kind trade.OrderKind) decimal.Decimal {
	if kind == trade.OrderKindPurchase {
		return product.DefaultCost
	}
	return product.DefaultPrice
}

// UpdateStatus moves an order between PENDING and DONE and applies the stock
// effects of the transition. Requesting the current status is an idempotent
// no-op. CANCELLED is rejected here; cancellation has its own operation.
func (s *OrderService) UpdateStatus(ctx context.Context, actingUser, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	if actingUser == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var response, before OrderResponse
	var mutated bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		before = ToOrderResponse(order)

		changed, err := order.ChangeStatus(req.Status)
		if err != nil {
			return err
		}
		mutated = changed
		if !changed {
			response = ToOrderResponse(order)
			return nil
		}

		allocator := inventory.NewAllocator(repos.Batches(), repos.Movements())
		switch req.Status {
		case trade.OrderStatusDone:
			if err := s.applyFulfillment(ctx, allocator, order, actingUser); err != nil {
				return err
			}
		case trade.OrderStatusPending:
			if err := s.unwindFulfillment(ctx, allocator, order, actingUser); err != nil {
				return err
			}
		}

		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if mutated {
		s.audit.LogUpdate(ctx, "order", orderID, actingUser, before, response)
	}
	return &response, nil
}

// applyFulfillment moves the goods of a PENDING -> DONE transition: sales
// orders release their own reservation and issue stock, purchase orders
// receive it. Quantities already refunded while pending are skipped.
func (s *OrderService) applyFulfillment(ctx context.Context, allocator *inventory.Allocator, order *trade.Order, actingUser uuid.UUID) error {
	for idx := range order.Lines {
		line := &order.Lines[idx]
		quantity := line.RemainingQuantity()
		if !quantity.IsPositive() {
			continue
		}

		movementType := inventory.MovementTypeReceive
		if order.Kind == trade.OrderKindSales {
			movementType = inventory.MovementTypeIssue
			if err := allocator.Release(ctx, line.ProductID, lineBatchRef(line), quantity); err != nil {
				return err
			}
		}

		_, err := allocator.ApplyMovement(ctx, inventory.MovementRequest{
			ProductID:    line.ProductID,
			Batch:        lineBatchRef(line),
			Type:         movementType,
			Quantity:     quantity,
			SourceType:   movementSource(order.Kind),
			SourceID:     order.OrderNumber,
			SourceLineID: line.ID.String(),
			OperatorID:   actingUser,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// unwindFulfillment compensates the fulfillment movements of a DONE ->
// PENDING transition with opposite movements, and re-reserves sales stock.
func (s *OrderService) unwindFulfillment(ctx context.Context, allocator *inventory.Allocator, order *trade.Order, actingUser uuid.UUID) error {
	for idx := range order.Lines {
		line := &order.Lines[idx]
		quantity := line.RemainingQuantity()
		if !quantity.IsPositive() {
			continue
		}

		movementType := inventory.MovementTypeIssue
		if order.Kind == trade.OrderKindSales {
			movementType = inventory.MovementTypeReceive
		}

		_, err := allocator.ApplyMovement(ctx, inventory.MovementRequest{
			ProductID:    line.ProductID,
			Batch:        lineBatchRef(line),
			Type:         movementType,
			Quantity:     quantity,
			SourceType:   movementSource(order.Kind),
			SourceID:     order.OrderNumber,
			SourceLineID: line.ID.String(),
			OperatorID:   actingUser,
			Note:         "fulfillment reversed",
		})
		if err != nil {
			return err
		}

		if order.Kind == trade.OrderKindSales {
			if err := allocator.Reserve(ctx, line.ProductID, lineBatchRef(line), quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddPayment appends a payment to the order's ledger
func (s *OrderService) AddPayment(ctx context.Context, actingUser, orderID uuid.UUID, req PaymentRequest) (*OrderResponse, error) {
	if actingUser == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var response, before OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		before = ToOrderResponse(order)

		record, err := order.RecordPayment(req.Amount, req.Method, actingUser)
		if err != nil {
			return err
		}
		if req.Reference != "" {
			record.WithReference(req.Reference)
		}
		if req.Note != "" {
			record.WithNote(req.Note)
		}

		if err := repos.Payments().Append(ctx, record); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogUpdate(ctx, "order", orderID, actingUser, before, response)
	return &response, nil
}

// Refund records a refund against an order: cash back through the ledger,
// returned goods through stock, or both. Goods on a fulfilled order move back
// through compensating movements; on a pending sales order only the
// reservation is released, since nothing has shipped yet.
func (s *OrderService) Refund(ctx context.Context, actingUser, orderID uuid.UUID, req RefundRequest) (*RefundResponse, error) {
	if actingUser == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}
	if req.Amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot be negative")
	}
	if req.Amount.IsZero() && len(req.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_REFUND", "Refund must return cash, goods, or both")
	}

	var response RefundResponse
	var before, after OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsCancelled() {
			return shared.NewDomainError("INVALID_STATE", "Cannot refund a cancelled order")
		}
		before = ToOrderResponse(order)

		refundNumber, err := s.numbers.NextRefundNumber(ctx)
		if err != nil {
			return err
		}

		var ledgerRecord *trade.PaymentRecord
		if req.Amount.IsPositive() {
			ledgerRecord, err = order.RecordRefund(req.Amount, req.Method, actingUser)
			if err != nil {
				return err
			}
		}

		refund, err := trade.NewRefundTransaction(refundNumber, order, req.Amount, req.Method, actingUser, req.Reason)
		if err != nil {
			return err
		}

		allocator := inventory.NewAllocator(repos.Batches(), repos.Movements())
		var returns []inventory.StockReturn
		for _, lineReq := range req.Lines {
			line := order.GetLine(lineReq.LineID)
			if line == nil {
				return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
			}
			if err := order.ApplyLineRefund(lineReq.LineID, lineReq.Quantity); err != nil {
				return err
			}
			if err := refund.AddLine(line, lineReq.Quantity); err != nil {
				return err
			}

			if order.IsDone() {
				returns = append(returns, inventory.StockReturn{
					ProductID:    line.ProductID,
					Batch:        lineBatchRef(line),
					Quantity:     lineReq.Quantity,
					SourceID:     refund.RefundNumber,
					SourceLineID: line.ID.String(),
				})
			} else if order.Kind == trade.OrderKindSales {
				if err := allocator.Release(ctx, line.ProductID, lineBatchRef(line), lineReq.Quantity); err != nil {
					return err
				}
			}
		}

		if len(returns) > 0 {
			inbound := order.Kind == trade.OrderKindSales
			if err := allocator.RefundStock(ctx, returns, inbound, actingUser); err != nil {
				return err
			}
		}

		if err := repos.Refunds().Save(ctx, refund); err != nil {
			return err
		}
		if ledgerRecord != nil {
			if err := repos.Payments().Append(ctx, ledgerRecord); err != nil {
				return err
			}
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		response = ToRefundResponse(refund)
		after = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogUpdate(ctx, "order", orderID, actingUser, before, after)
	return &response, nil
}

// Cancel moves an order to the terminal CANCELLED status. The guard is
// strict: the ledger's net cash must be exactly zero, and a fulfilled order
// must have every quantity refunded first. Net cash is recomputed from the
// persisted ledger rows, not from the aggregate snapshot.
func (s *OrderService) Cancel(ctx context.Context, actingUser, orderID uuid.UUID, req CancelRequest) (*OrderResponse, error) {
	if actingUser == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var response, before OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		before = ToOrderResponse(order)

		rows, err := repos.Payments().FindByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if !trade.NetCash(rows).IsZero() {
			return shared.NewDomainError("ORDER_HAS_NET_CASH", "Refund all payments before cancelling the order")
		}
		if order.IsDone() && !order.AllQuantitiesRefunded() {
			return shared.NewDomainError("GOODS_NOT_RETURNED", "All quantities must be refunded before cancelling a fulfilled order")
		}

		wasPending := order.IsPending()
		if err := order.Cancel(req.Reason); err != nil {
			return err
		}

		if wasPending && order.Kind == trade.OrderKindSales {
			allocator := inventory.NewAllocator(repos.Batches(), repos.Movements())
			for idx := range order.Lines {
				line := &order.Lines[idx]
				quantity := line.RemainingQuantity()
				if !quantity.IsPositive() {
					continue
				}
				if err := allocator.Release(ctx, line.ProductID, lineBatchRef(line), quantity); err != nil {
					return err
				}
			}
		}

		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogUpdate(ctx, "order", orderID, actingUser, before, response)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetRecent retrieves orders of a kind, newest first
func (s *OrderService) GetRecent(ctx context.Context, kind trade.OrderKind, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	var page *shared.Paginated[OrderResponse]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.Orders().FindRecent(ctx, kind, filter)
		if err != nil {
			return err
		}
		page = mapOrderPage(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetByCounterparty retrieves orders for one counterparty, newest first
func (s *OrderService) GetByCounterparty(ctx context.Context, counterpartyID uuid.UUID, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	var page *shared.Paginated[OrderResponse]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.Orders().FindByCounterparty(ctx, counterpartyID, filter)
		if err != nil {
			return err
		}
		page = mapOrderPage(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func mapOrderPage(orders *shared.Paginated[trade.Order]) *shared.Paginated[OrderResponse] {
	items := make([]OrderResponse, len(orders.Items))
	for i := range orders.Items {
		items[i] = ToOrderResponse(&orders.Items[i])
	}
	return &shared.Paginated[OrderResponse]{
		Items:      items,
		Total:      orders.Total,
		Page:       orders.Page,
		PageSize:   orders.PageSize,
		TotalPages: orders.TotalPages,
	}
}
