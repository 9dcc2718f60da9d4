package trade

import (
	"context"

	"github.com/google/uuid"
)

// AuditLogger records who changed what, with before/after snapshots.
// Implementations are best-effort and must never fail the operation that
// emits the entry.
type AuditLogger interface {
	LogCreate(ctx context.Context, entityType string, entityID, actingUser uuid.UUID, after interface{})
	LogUpdate(ctx context.Context, entityType string, entityID, actingUser uuid.UUID, before, after interface{})
}

// NopAuditLogger discards every entry
type NopAuditLogger struct{}

func (NopAuditLogger) LogCreate(context.Context, string, uuid.UUID, uuid.UUID, interface{}) {}

func (NopAuditLogger) LogUpdate(context.Context, string, uuid.UUID, uuid.UUID, interface{}, interface{}) {
}
