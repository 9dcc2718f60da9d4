package persistence

import (
	"context"

	"gorm.io/gorm"

	apptrade "github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/application/trade"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/catalog"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/inventory"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/partner"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/trade"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Orders returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Payments returns the payment ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) Payments() trade.PaymentRecordRepository {
	return NewGormPaymentRecordRepository(r.tx)
}

// Refunds returns the refund repository scoped to the current transaction
func (r *gormTransactionalRepositories) Refunds() trade.RefundRepository {
	return NewGormRefundRepository(r.tx)
}

// Batches returns the product batch repository scoped to the current transaction
func (r *gormTransactionalRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// Movements returns the stock movement repository scoped to the current transaction
func (r *gormTransactionalRepositories) Movements() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Counterparties returns the counterparty repository scoped to the current transaction
func (r *gormTransactionalRepositories) Counterparties() partner.CounterpartyRepository {
	return NewGormCounterpartyRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
