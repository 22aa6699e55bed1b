package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node of the per-tenant category tree.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  *uuid.UUID `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_categories_code"`
	Code      string     `gorm:"column:code;not null;uniqueIndex:uq_categories_code"`
	Name      string     `gorm:"column:name;not null"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	Position  int        `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string { return "categories" }

// ProductGroup is a flat grouping used for reporting and bulk pricing.
type ProductGroup struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  *uuid.UUID `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_product_groups_code"`
	Code      string     `gorm:"column:code;not null;uniqueIndex:uq_product_groups_code"`
	Name      string     `gorm:"column:name;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductGroup) TableName() string { return "product_groups" }
