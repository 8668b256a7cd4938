package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry describes one business action for the audit trail
type AuditEntry struct {
	TenantID   uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Detail     map[string]any
	OccurredAt time.Time
}

// AuditSink receives audit entries after the owning transaction has
// committed. Implementations must not fail the business operation;
// recording is best effort.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}

// NoopAuditSink discards all entries
type NoopAuditSink struct{}

// Record implements AuditSink
func (NoopAuditSink) Record(context.Context, AuditEntry) {}

// NewAuditEntry builds an entry stamped with the current time
func NewAuditEntry(tenantID uuid.UUID, action, entityType string, entityID uuid.UUID, detail map[string]any) AuditEntry {
	return AuditEntry{
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
