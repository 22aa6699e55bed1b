package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/enums"
)

// Tenant is one site/partition of the catalogue. Records carrying a nil
// tenant reference predate tenant assignment and form their own scope.
type Tenant struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string             `gorm:"column:code;not null;uniqueIndex:uq_tenants_code"`
	Name      string             `gorm:"column:name;not null"`
	Status    enums.TenantStatus `gorm:"column:status;not null;default:'active'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
