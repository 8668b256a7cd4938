package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
)

// AuditLog is one recorded business action
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"size:100;not null;index"`
	EntityType string    `gorm:"size:60;not null"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Detail     []byte    `gorm:"type:jsonb"`
	OccurredAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

// TableName overrides the gorm table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// GormAuditSink writes audit entries on the main connection, outside the
// business transaction. Failures are logged and never propagate.
type GormAuditSink struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormAuditSink creates an audit sink
func NewGormAuditSink(db *gorm.DB, logger *zap.Logger) *GormAuditSink {
	return &GormAuditSink{db: db, logger: logger}
}

// Record implements appshared.AuditSink
func (s *GormAuditSink) Record(ctx context.Context, entry appshared.AuditEntry) {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		s.logger.Warn("audit detail marshal failed", zap.Error(err))
		detail = nil
	}
	row := &AuditLog{
		ID:         uuid.New(),
		TenantID:   entry.TenantID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     detail,
		OccurredAt: entry.OccurredAt,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		s.logger.Warn("audit record write failed",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}
