package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/application/trade"
)

// ZapAuditLogger writes audit entries to the structured log. Entries are
// fire-and-record: nothing here can fail the calling operation.
type ZapAuditLogger struct {
	log *zap.Logger
}

// NewZapAuditLogger creates a new ZapAuditLogger
func NewZapAuditLogger(log *zap.Logger) *ZapAuditLogger {
	return &ZapAuditLogger{log: log.Named("audit")}
}

// LogCreate records the creation of an entity
func (l *ZapAuditLogger) LogCreate(_ context.Context, entityType string, entityID, actingUser uuid.UUID, after interface{}) {
	l.log.Info("entity created",
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID.String()),
		zap.String("acting_user", actingUser.String()),
		zap.Any("after", after),
	)
}

// LogUpdate records a mutation of an entity with before/after snapshots
func (l *ZapAuditLogger) LogUpdate(_ context.Context, entityType string, entityID, actingUser uuid.UUID, before, after interface{}) {
	l.log.Info("entity updated",
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID.String()),
		zap.String("acting_user", actingUser.String()),
		zap.Any("before", before),
		zap.Any("after", after),
	)
}

// Ensure ZapAuditLogger implements AuditLogger
var _ trade.AuditLogger = (*ZapAuditLogger)(nil)
