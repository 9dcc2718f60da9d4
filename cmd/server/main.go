package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	notificationapp "github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/application/notification"
	reportapp "github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/application/report"
	tradeapp "github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/application/trade"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/tax"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/infrastructure/audit"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/infrastructure/config"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/infrastructure/logger"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/infrastructure/persistence"
)

// application bundles the wired services the daemon runs with
type application struct {
	orders    *tradeapp.OrderService
	summaries *reportapp.SummaryService
	scanner   *notificationapp.BalanceScanner
	log       *zap.Logger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Alyarmouk inventory manager",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Initialize repositories and services
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	numberGenerator := persistence.NewGormNumberGenerator(db.DB, cfg.Numbering.MaxAttempts)
	transactionScope := persistence.NewGormTransactionScope(db.DB)
	auditLog := audit.NewZapAuditLogger(log)

	rates := tax.Rates{
		VAT:              decimal.NewFromFloat(cfg.Tax.VATRate),
		ManufacturingTax: decimal.NewFromFloat(cfg.Tax.ManufacturingTaxRate),
	}

	app := &application{
		orders:    tradeapp.NewOrderService(transactionScope, numberGenerator, rates, auditLog),
		summaries: reportapp.NewSummaryService(orderRepo),
		scanner:   notificationapp.NewBalanceScanner(orderRepo, cfg.Notification.DueHorizon, log),
		log:       log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logMonthToDate(ctx)
	app.run(ctx)
}

// run scans balances periodically until shutdown
func (a *application) run(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	a.scanBalances(ctx)
	for {
		select {
		case <-ctx.Done():
			a.log.Info("Shutting down")
			return
		case <-ticker.C:
			a.scanBalances(ctx)
		}
	}
}

func (a *application) scanBalances(ctx context.Context) {
	alerts, err := a.scanner.Scan(ctx, time.Now())
	if err != nil {
		a.log.Error("Balance scan failed", zap.Error(err))
		return
	}
	for _, alert := range alerts {
		a.log.Warn("Outstanding balance",
			zap.String("order_number", alert.OrderNumber),
			zap.String("counterparty", alert.CounterpartyName),
			zap.String("remaining", alert.RemainingAmount.String()),
			zap.Bool("overdue", alert.Overdue),
		)
	}
}

func (a *application) logMonthToDate(ctx context.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	summary, err := a.summaries.Summarize(ctx, from, now.Add(time.Second))
	if err != nil {
		a.log.Error("Month-to-date summary failed", zap.Error(err))
		return
	}
	a.log.Info("Month-to-date trade summary",
		zap.Int("sales_orders", summary.Sales.OrderCount),
		zap.String("sales_total", summary.Sales.TotalAmount.String()),
		zap.String("sales_outstanding", summary.Sales.OutstandingAmount.String()),
		zap.Int("purchase_orders", summary.Purchases.OrderCount),
		zap.String("purchase_total", summary.Purchases.TotalAmount.String()),
	)
}
