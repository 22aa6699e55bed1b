package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus is a tenant-defined lifecycle state for products. The
// default status is assigned to newly created products.
type ProductStatus struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   *uuid.UUID `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_product_statuses_code"`
	Code       string     `gorm:"column:code;not null;uniqueIndex:uq_product_statuses_code"`
	Name       string     `gorm:"column:name;not null"`
	AllowsSale bool       `gorm:"column:allows_sale;not null;default:true"`
	IsDefault  bool       `gorm:"column:is_default;not null;default:false"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductStatus) TableName() string { return "product_statuses" }

func (p *ProductStatus) GetID() uuid.UUID          { return p.ID }
func (p *ProductStatus) TenantScopeID() *uuid.UUID { return p.TenantID }

func (p *ProductStatus) DefaultFlags() map[string]bool {
	return map[string]bool{FlagDefault: p.IsDefault}
}

func (p *ProductStatus) SetDefaultFlag(name string, value bool) bool {
	if name != FlagDefault {
		return false
	}
	p.IsDefault = value
	return true
}
