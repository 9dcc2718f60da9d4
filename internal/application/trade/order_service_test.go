package trade

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/catalog"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/inventory"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/partner"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/tax"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// ---- in-memory fakes ----

type fakeOrderRepository struct {
	orders map[uuid.UUID]*trade.Order
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[uuid.UUID]*trade.Order)}
}

func (r *fakeOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepository) FindByOrderNumber(_ context.Context, orderNumber string) (*trade.Order, error) {
	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	_, err := r.FindByOrderNumber(ctx, orderNumber)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeOrderRepository) FindRecent(_ context.Context, kind trade.OrderKind, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	var items []trade.Order
	for _, order := range r.orders {
		if order.Kind == kind {
			items = append(items, *order)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeOrderRepository) FindByCounterparty(_ context.Context, counterpartyID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	var items []trade.Order
	for _, order := range r.orders {
		if order.CounterpartyID == counterpartyID {
			items = append(items, *order)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeOrderRepository) FindByDateRange(_ context.Context, kind trade.OrderKind, from, to time.Time) ([]trade.Order, error) {
	var out []trade.Order
	for _, order := range r.orders {
		if order.Kind == kind && !order.IsCancelled() &&
			!order.OrderDate.Before(from) && order.OrderDate.Before(to) {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepository) FindWithBalanceDueBetween(_ context.Context, from, to time.Time) ([]trade.Order, error) {
	var out []trade.Order
	for _, order := range r.orders {
		if order.DueDate == nil || order.IsCancelled() {
			continue
		}
		if !order.DueDate.Before(from) && order.DueDate.Before(to) && order.RemainingAmount().IsPositive() {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepository) Save(_ context.Context, order *trade.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepository) SaveWithLock(_ context.Context, order *trade.Order) error {
	current, ok := r.orders[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != order.Version {
		return shared.ErrConcurrencyConflict
	}
	order.IncrementVersion()
	r.orders[order.ID] = order
	return nil
}

type fakePaymentRepository struct {
	rows []trade.PaymentRecord
}

func (r *fakePaymentRepository) Append(_ context.Context, record *trade.PaymentRecord) error {
	r.rows = append(r.rows, *record)
	return nil
}

func (r *fakePaymentRepository) FindByOrder(_ context.Context, orderID uuid.UUID) ([]trade.PaymentRecord, error) {
	var out []trade.PaymentRecord
	for _, row := range r.rows {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeRefundRepository struct {
	refunds []trade.RefundTransaction
}

func (r *fakeRefundRepository) FindByID(_ context.Context, id uuid.UUID) (*trade.RefundTransaction, error) {
	for i := range r.refunds {
		if r.refunds[i].ID == id {
			return &r.refunds[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRefundRepository) FindByOrder(_ context.Context, orderID uuid.UUID) ([]trade.RefundTransaction, error) {
	var out []trade.RefundTransaction
	for _, refund := range r.refunds {
		if refund.OrderID == orderID {
			out = append(out, refund)
		}
	}
	return out, nil
}

func (r *fakeRefundRepository) Save(_ context.Context, refund *trade.RefundTransaction) error {
	r.refunds = append(r.refunds, *refund)
	return nil
}

type fakeBatchRepository struct {
	batches map[uuid.UUID]*inventory.ProductBatch
}

func newFakeBatchRepository() *fakeBatchRepository {
	return &fakeBatchRepository{batches: make(map[uuid.UUID]*inventory.ProductBatch)}
}

func (r *fakeBatchRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.ProductBatch, error) {
	batch, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *batch
	return &copied, nil
}

func (r *fakeBatchRepository) FindByProductAndNumber(_ context.Context, productID uuid.UUID, batchNumber string) (*inventory.ProductBatch, error) {
	for _, batch := range r.batches {
		if batch.ProductID == productID && batch.BatchNumber == batchNumber {
			copied := *batch
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBatchRepository) FindByProduct(_ context.Context, productID uuid.UUID) ([]inventory.ProductBatch, error) {
	var out []inventory.ProductBatch
	for _, batch := range r.batches {
		if batch.ProductID == productID {
			out = append(out, *batch)
		}
	}
	return out, nil
}

func (r *fakeBatchRepository) Save(_ context.Context, batch *inventory.ProductBatch) error {
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

func (r *fakeBatchRepository) SaveWithLock(_ context.Context, batch *inventory.ProductBatch) error {
	current, ok := r.batches[batch.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != batch.Version {
		return shared.ErrConcurrencyConflict
	}
	copied := *batch
	copied.Version++
	r.batches[batch.ID] = &copied
	return nil
}

type fakeMovementRepository struct {
	rows []inventory.StockMovement
}

func (r *fakeMovementRepository) Append(_ context.Context, movement *inventory.StockMovement) error {
	r.rows = append(r.rows, *movement)
	return nil
}

func (r *fakeMovementRepository) FindByBatch(_ context.Context, batchID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.rows {
		if m.BatchID == batchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepository) FindBySource(_ context.Context, sourceType inventory.SourceType, sourceID string) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.rows {
		if m.SourceType == sourceType && m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeProductRepository struct {
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepository() *fakeProductRepository {
	return &fakeProductRepository{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepository) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, product := range r.products {
		if product.Code == code {
			return product, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepository) FindActive(_ context.Context, filter shared.Filter) (*shared.Paginated[catalog.Product], error) {
	var items []catalog.Product
	for _, product := range r.products {
		if product.Active {
			items = append(items, *product)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeProductRepository) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = product
	return nil
}

type fakeCounterpartyRepository struct {
	counterparties map[uuid.UUID]*partner.Counterparty
}

func newFakeCounterpartyRepository() *fakeCounterpartyRepository {
	return &fakeCounterpartyRepository{counterparties: make(map[uuid.UUID]*partner.Counterparty)}
}

func (r *fakeCounterpartyRepository) FindByID(_ context.Context, id uuid.UUID) (*partner.Counterparty, error) {
	counterparty, ok := r.counterparties[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return counterparty, nil
}

func (r *fakeCounterpartyRepository) FindActive(_ context.Context, filter shared.Filter) (*shared.Paginated[partner.Counterparty], error) {
	var items []partner.Counterparty
	for _, counterparty := range r.counterparties {
		if counterparty.Active {
			items = append(items, *counterparty)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeCounterpartyRepository) Save(_ context.Context, counterparty *partner.Counterparty) error {
	r.counterparties[counterparty.ID] = counterparty
	return nil
}

type recordingAuditLogger struct {
	creates []uuid.UUID
	updates []uuid.UUID
}

func (l *recordingAuditLogger) LogCreate(_ context.Context, _ string, entityID, _ uuid.UUID, _ interface{}) {
	l.creates = append(l.creates, entityID)
}

func (l *recordingAuditLogger) LogUpdate(_ context.Context, _ string, entityID, _ uuid.UUID, _, _ interface{}) {
	l.updates = append(l.updates, entityID)
}

type fakeNumberGenerator struct {
	orderSeq  int
	refundSeq int
}

func (g *fakeNumberGenerator) NextOrderNumber(_ context.Context, kind trade.OrderKind) (string, error) {
	g.orderSeq++
	prefix := "SO"
	if kind == trade.OrderKindPurchase {
		prefix = "PO"
	}
	return fmt.Sprintf("%s-2026-%04d", prefix, g.orderSeq), nil
}

func (g *fakeNumberGenerator) NextRefundNumber(_ context.Context) (string, error) {
	g.refundSeq++
	return fmt.Sprintf("RF-2026-%04d", g.refundSeq), nil
}

// ---- fixture ----

type serviceFixture struct {
	service        *OrderService
	orders         *fakeOrderRepository
	payments       *fakePaymentRepository
	refunds        *fakeRefundRepository
	batches        *fakeBatchRepository
	movements      *fakeMovementRepository
	products       *fakeProductRepository
	counterparties *fakeCounterpartyRepository
	audit          *recordingAuditLogger

	operator uuid.UUID
	customer *partner.Counterparty
	supplier *partner.Counterparty
	cement   *catalog.Product
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		orders:         newFakeOrderRepository(),
		payments:       &fakePaymentRepository{},
		refunds:        &fakeRefundRepository{},
		batches:        newFakeBatchRepository(),
		movements:      &fakeMovementRepository{},
		products:       newFakeProductRepository(),
		counterparties: newFakeCounterpartyRepository(),
		audit:          &recordingAuditLogger{},
		operator:       uuid.New(),
	}

	scope := NewNoOpTransactionScope(f.orders, f.payments, f.refunds, f.batches, f.movements, f.products, f.counterparties)
	f.service = NewOrderService(scope, &fakeNumberGenerator{}, tax.DefaultRates(), f.audit)

	var err error
	f.customer, err = partner.NewCounterparty("Al Noor Trading", partner.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, f.counterparties.Save(context.Background(), f.customer))

	f.supplier, err = partner.NewCounterparty("Delta Cement Co", partner.RoleSupplier)
	require.NoError(t, err)
	require.NoError(t, f.counterparties.Save(context.Background(), f.supplier))

	f.cement, err = catalog.NewProduct("CEM-50", "Cement 50kg", "bag", decimal.NewFromInt(100), decimal.NewFromInt(80))
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), f.cement))

	return f
}

func (f *serviceFixture) seedStock(t *testing.T, onHand int64) *inventory.ProductBatch {
	t.Helper()
	batch, err := inventory.NewProductBatch(f.cement.ID, "", decimal.NewFromInt(80), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, batch.Apply(decimal.NewFromInt(onHand)))
	require.NoError(t, f.batches.Save(context.Background(), batch))
	return batch
}

func (f *serviceFixture) createSalesOrder(t *testing.T, quantity int64, paid bool) *OrderResponse {
	t.Helper()
	resp, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
		Kind:           trade.OrderKindSales,
		CounterpartyID: f.customer.ID,
		ApplyVAT:       true,
		Paid:           paid,
		Lines: []CreateOrderLineRequest{
			{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(quantity)},
		},
	})
	require.NoError(t, err)
	return resp
}

func (f *serviceFixture) batchState(t *testing.T, batchID uuid.UUID) *inventory.ProductBatch {
	t.Helper()
	batch, err := f.batches.FindByID(context.Background(), batchID)
	require.NoError(t, err)
	return batch
}

// ---- tests ----

func TestOrderService_Create(t *testing.T) {
	t.Run("sales order computes taxes and reserves stock", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)

		resp := f.createSalesOrder(t, 5, false)

		assert.Equal(t, "SO-2026-0001", resp.OrderNumber)
		assert.Equal(t, trade.OrderStatusPending, resp.Status)
		assert.Equal(t, trade.PaymentStatusPending, resp.PaymentStatus)
		// 5 x 100 = 500 + 70 VAT
		assert.Equal(t, "500", resp.Subtotal.String())
		assert.Equal(t, "70", resp.VATAmount.String())
		assert.Equal(t, "570", resp.TotalAmount.String())
		assert.Equal(t, "Al Noor Trading", resp.CounterpartyName)

		state := f.batchState(t, batch.ID)
		assert.Equal(t, "20", state.OnHand.String(), "reservation never moves stock")
		assert.Equal(t, "5", state.Reserved.String())
		assert.Empty(t, f.movements.rows)
	})

	t.Run("paid flag settles the full total in the same transaction", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)

		resp := f.createSalesOrder(t, 5, true)

		assert.Equal(t, trade.PaymentStatusPaid, resp.PaymentStatus)
		assert.Equal(t, "570", resp.PaidAmount.String())
		assert.True(t, resp.RemainingAmount.IsZero())
		require.Len(t, f.payments.rows, 1)
		assert.Equal(t, trade.PaymentTypePayment, f.payments.rows[0].Type)
	})

	t.Run("purchase order uses cost and skips stock", func(t *testing.T) {
		f := newServiceFixture(t)

		resp, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:           trade.OrderKindPurchase,
			CounterpartyID: f.supplier.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(10)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "PO-2026-0001", resp.OrderNumber)
		assert.Equal(t, "800", resp.TotalAmount.String(), "falls back to default cost")
		assert.Empty(t, f.movements.rows)
	})

	t.Run("purchase with receive on create lands stock immediately", func(t *testing.T) {
		f := newServiceFixture(t)

		resp, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:            trade.OrderKindPurchase,
			CounterpartyID:  f.supplier.ID,
			ReceiveOnCreate: true,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(10), BatchNumber: "LOT-B"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusDone, resp.Status)

		batch, err := f.batches.FindByProductAndNumber(context.Background(), f.cement.ID, "LOT-B")
		require.NoError(t, err)
		assert.Equal(t, "10", batch.OnHand.String())

		rows, err := f.movements.FindBySource(context.Background(), inventory.SourceTypePurchaseOrder, resp.OrderNumber)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "10", rows[0].QuantityDelta.String())
	})

	t.Run("receive on create is ignored for sales orders", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)

		resp, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:            trade.OrderKindSales,
			CounterpartyID:  f.customer.ID,
			ReceiveOnCreate: true,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(5)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusPending, resp.Status)

		state := f.batchState(t, batch.ID)
		assert.Equal(t, "20", state.OnHand.String())
		assert.Equal(t, "5", state.Reserved.String())
		assert.Empty(t, f.movements.rows)
	})

	t.Run("sales order beyond available stock fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 3)

		_, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:           trade.OrderKindSales,
			CounterpartyID: f.customer.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(5)},
			},
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("counterparty role is enforced", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:           trade.OrderKindSales,
			CounterpartyID: f.supplier.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVALID_COUNTERPARTY")
	})

	t.Run("inactive product rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.cement.Deactivate()

		_, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:           trade.OrderKindSales,
			CounterpartyID: f.customer.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(1)},
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRODUCT_INACTIVE")
	})

	t.Run("acting user is required", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.Create(context.Background(), uuid.Nil, CreateOrderRequest{})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("empty lines rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.Create(context.Background(), f.operator, CreateOrderRequest{
			Kind:           trade.OrderKindSales,
			CounterpartyID: f.customer.ID,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("fulfilling a sales order releases the reservation and issues stock", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		resp, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusDone, resp.Status)

		state := f.batchState(t, batch.ID)
		assert.Equal(t, "15", state.OnHand.String())
		assert.True(t, state.Reserved.IsZero())

		rows, err := f.movements.FindBySource(ctx, inventory.SourceTypeSalesOrder, created.OrderNumber)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "-5", rows[0].QuantityDelta.String())
	})

	t.Run("fulfilling a purchase order receives stock", func(t *testing.T) {
		f := newServiceFixture(t)

		created, err := f.service.Create(ctx, f.operator, CreateOrderRequest{
			Kind:           trade.OrderKindPurchase,
			CounterpartyID: f.supplier.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: f.cement.ID, Quantity: decimal.NewFromInt(10), BatchNumber: "LOT-A"},
			},
		})
		require.NoError(t, err)

		_, err = f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)

		batch, err := f.batches.FindByProductAndNumber(ctx, f.cement.ID, "LOT-A")
		require.NoError(t, err)
		assert.Equal(t, "10", batch.OnHand.String())
	})

	t.Run("reopening a fulfilled sales order pulls stock back and re-reserves", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)
		resp, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusPending})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusPending, resp.Status)

		state := f.batchState(t, batch.ID)
		assert.Equal(t, "20", state.OnHand.String())
		assert.Equal(t, "5", state.Reserved.String())
	})

	t.Run("same status is an idempotent no-op", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		resp, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusPending})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusPending, resp.Status)
		assert.Empty(t, f.movements.rows)
	})

	t.Run("cancelled target rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusCancelled})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVALID_TRANSITION")
	})

	t.Run("own reservation never blocks fulfillment", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 8)
		first := f.createSalesOrder(t, 5, false)
		second := f.createSalesOrder(t, 3, false)

		// together they reserve everything; fulfilling either one still works
		// because each releases its own reservation first
		_, err := f.service.UpdateStatus(ctx, f.operator, first.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(ctx, f.operator, second.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)
	})
}

func TestOrderService_AddPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("partial payments accumulate", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false) // total 570

		resp, err := f.service.AddPayment(ctx, f.operator, created.ID, PaymentRequest{
			Amount: decimal.NewFromInt(300),
			Method: trade.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, trade.PaymentStatusPartiallyPaid, resp.PaymentStatus)
		assert.Equal(t, "270", resp.RemainingAmount.String())

		resp, err = f.service.AddPayment(ctx, f.operator, created.ID, PaymentRequest{
			Amount: decimal.NewFromInt(270),
			Method: trade.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)
		assert.Equal(t, trade.PaymentStatusPaid, resp.PaymentStatus)
		assert.Len(t, f.payments.rows, 2)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.AddPayment(ctx, f.operator, created.ID, PaymentRequest{
			Amount: decimal.NewFromInt(571),
			Method: trade.PaymentMethodCash,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OVERPAYMENT")
		assert.Empty(t, f.payments.rows)
	})
}

func TestOrderService_Refund(t *testing.T) {
	ctx := context.Background()

	t.Run("refund on a fulfilled sales order returns goods and cash", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, true) // total 570, fully paid
		_, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)

		lineID := created.Lines[0].ID
		refund, err := f.service.Refund(ctx, f.operator, created.ID, RefundRequest{
			Amount: decimal.NewFromInt(228), // 2 of 5 units incl VAT
			Method: trade.PaymentMethodCash,
			Lines:  []RefundLineRequest{{LineID: lineID, Quantity: decimal.NewFromInt(2)}},
			Reason: "damaged bags",
		})
		require.NoError(t, err)
		assert.Equal(t, "RF-2026-0001", refund.RefundNumber)

		state := f.batchState(t, batch.ID)
		assert.Equal(t, "17", state.OnHand.String(), "15 after fulfillment + 2 returned")

		rows, err := f.movements.FindBySource(ctx, inventory.SourceTypeRefund, refund.RefundNumber)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2", rows[0].QuantityDelta.String())

		order, err := f.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "228", order.RefundedAmount.String())
		assert.Equal(t, "2", order.Lines[0].RefundedQuantity.String())
		assert.Equal(t, trade.PaymentStatusPartiallyPaid, order.PaymentStatus)
	})

	t.Run("refund on a pending sales order only frees the reservation", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.Refund(ctx, f.operator, created.ID, RefundRequest{
			Method: trade.PaymentMethodCash,
			Lines:  []RefundLineRequest{{LineID: created.Lines[0].ID, Quantity: decimal.NewFromInt(2)}},
		})
		require.NoError(t, err)

		state := f.batchState(t, batch.ID)
		assert.Equal(t, "20", state.OnHand.String())
		assert.Equal(t, "3", state.Reserved.String())
		assert.Empty(t, f.movements.rows)
	})

	t.Run("cash refund cannot exceed net cash", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.Refund(ctx, f.operator, created.ID, RefundRequest{
			Amount: decimal.NewFromInt(10),
			Method: trade.PaymentMethodCash,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REFUND_EXCEEDS_NET_CASH")
	})

	t.Run("refund quantity cannot exceed the line", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.Refund(ctx, f.operator, created.ID, RefundRequest{
			Method: trade.PaymentMethodCash,
			Lines:  []RefundLineRequest{{LineID: created.Lines[0].ID, Quantity: decimal.NewFromInt(6)}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REFUND_EXCEEDS_QUANTITY")
	})

	t.Run("empty refund rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.Refund(ctx, f.operator, created.ID, RefundRequest{Method: trade.PaymentMethodCash})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EMPTY_REFUND")
	})
}

func TestOrderService_AuditTrail(t *testing.T) {
	ctx := context.Background()

	t.Run("mutations emit audit entries", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)
		assert.Equal(t, []uuid.UUID{created.ID}, f.audit.creates)

		_, err := f.service.AddPayment(ctx, f.operator, created.ID, PaymentRequest{
			Amount: decimal.NewFromInt(100), Method: trade.PaymentMethodCash,
		})
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{created.ID, created.ID}, f.audit.updates)
	})

	t.Run("no-op status update emits nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusPending})
		require.NoError(t, err)
		assert.Empty(t, f.audit.updates)
	})

	t.Run("failed operations emit nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		_, err := f.service.AddPayment(ctx, f.operator, created.ID, PaymentRequest{
			Amount: decimal.NewFromInt(9999), Method: trade.PaymentMethodCash,
		})
		require.Error(t, err)
		assert.Empty(t, f.audit.updates)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("pending unpaid order cancels and frees its reservation", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)

		resp, err := f.service.Cancel(ctx, f.operator, created.ID, CancelRequest{Reason: "customer backed out"})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusCancelled, resp.Status)

		state := f.batchState(t, batch.ID)
		assert.True(t, state.Reserved.IsZero())
		assert.Equal(t, "20", state.OnHand.String())
	})

	t.Run("outstanding net cash blocks cancellation", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, true)

		_, err := f.service.Cancel(ctx, f.operator, created.ID, CancelRequest{Reason: "dup"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ORDER_HAS_NET_CASH")
	})

	t.Run("fulfilled order needs every quantity refunded", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, true)
		_, err := f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		require.NoError(t, err)

		// refund all the cash but only part of the goods
		_, err = f.service.Refund(ctx, f.operator, created.ID, RefundRequest{
			Amount: decimal.NewFromInt(570),
			Method: trade.PaymentMethodCash,
			Lines:  []RefundLineRequest{{LineID: created.Lines[0].ID, Quantity: decimal.NewFromInt(3)}},
		})
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, f.operator, created.ID, CancelRequest{Reason: "return"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOODS_NOT_RETURNED")

		// returning the rest unblocks it
		_, err = f.service.Refund(ctx, f.operator, created.ID, RefundRequest{
			Method: trade.PaymentMethodCash,
			Lines:  []RefundLineRequest{{LineID: created.Lines[0].ID, Quantity: decimal.NewFromInt(2)}},
		})
		require.NoError(t, err)

		resp, err := f.service.Cancel(ctx, f.operator, created.ID, CancelRequest{Reason: "return"})
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusCancelled, resp.Status)
	})

	t.Run("cancelled order accepts no further operations", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedStock(t, 20)
		created := f.createSalesOrder(t, 5, false)
		_, err := f.service.Cancel(ctx, f.operator, created.ID, CancelRequest{Reason: "dup"})
		require.NoError(t, err)

		_, err = f.service.AddPayment(ctx, f.operator, created.ID, PaymentRequest{
			Amount: decimal.NewFromInt(10), Method: trade.PaymentMethodCash,
		})
		assert.Error(t, err)

		_, err = f.service.UpdateStatus(ctx, f.operator, created.ID, UpdateStatusRequest{Status: trade.OrderStatusDone})
		assert.Error(t, err)
	})
}
