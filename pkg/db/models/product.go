package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalogue entry. Type, status, tax class, and unit fall back
// to the per-scope defaults when not set explicitly at creation time.
type Product struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      *uuid.UUID     `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_products_sku"`
	SKU           string         `gorm:"column:sku;not null;uniqueIndex:uq_products_sku"`
	Name          string         `gorm:"column:name;not null"`
	Description   *string        `gorm:"column:description"`
	TypeID        uuid.UUID      `gorm:"column:type_id;type:uuid;not null"`
	StatusID      uuid.UUID      `gorm:"column:status_id;type:uuid;not null"`
	TaxClassID    uuid.UUID      `gorm:"column:tax_class_id;type:uuid;not null"`
	MeasureUnitID uuid.UUID      `gorm:"column:measure_unit_id;type:uuid;not null"`
	CategoryID    *uuid.UUID     `gorm:"column:category_id;type:uuid"`
	GroupID       *uuid.UUID     `gorm:"column:group_id;type:uuid"`
	Tags          pq.StringArray `gorm:"column:tags;type:text[]"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	Prices        []ProductPrice `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
