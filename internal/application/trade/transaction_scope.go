package trade

import (
	"context"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/catalog"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/inventory"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/partner"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories an order
// operation touches. Everything executed within one scope commits or rolls
// back atomically: an order update, its ledger rows and its stock movements
// never land partially.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// Orders returns the order repository scoped to the current transaction
	Orders() trade.OrderRepository
	// Payments returns the payment ledger repository scoped to the current transaction
	Payments() trade.PaymentRecordRepository
	// Refunds returns the refund repository scoped to the current transaction
	Refunds() trade.RefundRepository
	// Batches returns the product batch repository scoped to the current transaction
	Batches() inventory.BatchRepository
	// Movements returns the stock movement repository scoped to the current transaction
	Movements() inventory.MovementRepository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// Counterparties returns the counterparty repository scoped to the current transaction
	Counterparties() partner.CounterpartyRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	orders         trade.OrderRepository
	payments       trade.PaymentRecordRepository
	refunds        trade.RefundRepository
	batches        inventory.BatchRepository
	movements      inventory.MovementRepository
	products       catalog.ProductRepository
	counterparties partner.CounterpartyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	orders trade.OrderRepository,
	payments trade.PaymentRecordRepository,
	refunds trade.RefundRepository,
	batches inventory.BatchRepository,
	movements inventory.MovementRepository,
	products catalog.ProductRepository,
	counterparties partner.CounterpartyRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:         orders,
		payments:       payments,
		refunds:        refunds,
		batches:        batches,
		movements:      movements,
		products:       products,
		counterparties: counterparties,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() trade.OrderRepository { return s.orders }

// Payments returns the payment ledger repository
func (s *NoOpTransactionScope) Payments() trade.PaymentRecordRepository { return s.payments }

// Refunds returns the refund repository
func (s *NoOpTransactionScope) Refunds() trade.RefundRepository { return s.refunds }

// Batches returns the product batch repository
func (s *NoOpTransactionScope) Batches() inventory.BatchRepository { return s.batches }

// Movements returns the stock movement repository
func (s *NoOpTransactionScope) Movements() inventory.MovementRepository { return s.movements }

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// Counterparties returns the counterparty repository
func (s *NoOpTransactionScope) Counterparties() partner.CounterpartyRepository {
	return s.counterparties
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
