package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxClass holds a named tax rate. The default class is applied to products
// that do not pick one explicitly.
type TaxClass struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  *uuid.UUID      `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_tax_classes_code"`
	Code      string          `gorm:"column:code;not null;uniqueIndex:uq_tax_classes_code"`
	Name      string          `gorm:"column:name;not null"`
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(6,3);not null"`
	IsDefault bool            `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (TaxClass) TableName() string { return "tax_classes" }

func (t *TaxClass) GetID() uuid.UUID          { return t.ID }
func (t *TaxClass) TenantScopeID() *uuid.UUID { return t.TenantID }

func (t *TaxClass) DefaultFlags() map[string]bool {
	return map[string]bool{FlagDefault: t.IsDefault}
}

func (t *TaxClass) SetDefaultFlag(name string, value bool) bool {
	if name != FlagDefault {
		return false
	}
	t.IsDefault = value
	return true
}
