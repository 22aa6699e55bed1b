package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductType classifies products (physical good, service, bundle, ...).
type ProductType struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  *uuid.UUID `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_product_types_code"`
	Code      string     `gorm:"column:code;not null;uniqueIndex:uq_product_types_code"`
	Name      string     `gorm:"column:name;not null"`
	IsDefault bool       `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductType) TableName() string { return "product_types" }

func (p *ProductType) GetID() uuid.UUID          { return p.ID }
func (p *ProductType) TenantScopeID() *uuid.UUID { return p.TenantID }

func (p *ProductType) DefaultFlags() map[string]bool {
	return map[string]bool{FlagDefault: p.IsDefault}
}

func (p *ProductType) SetDefaultFlag(name string, value bool) bool {
	if name != FlagDefault {
		return false
	}
	p.IsDefault = value
	return true
}
