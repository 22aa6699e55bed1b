package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/enums"
)

// Notification records a side effect worth telling tenant operators about,
// e.g. that saving a new default disabled the previous one.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    *uuid.UUID             `gorm:"column:tenant_id;type:uuid;index:idx_notifications_tenant"`
	Kind        enums.NotificationKind `gorm:"column:kind;not null"`
	EntityTable string                 `gorm:"column:entity_table;not null"`
	EntityID    uuid.UUID              `gorm:"column:entity_id;type:uuid;not null"`
	Message     string                 `gorm:"column:message;not null"`
	ReadAt      *time.Time             `gorm:"column:read_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string { return "notifications" }
