package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/enums"
)

// Flag column names shared by the defaultable catalogue entities.
const (
	FlagDefault         = "is_default"
	FlagDefaultPurchase = "is_default_purchase"
)

// PriceList groups product prices. It carries two default flags: the
// selling default and the purchase default. Both are unique per scope and
// may never be true on the same record at once.
type PriceList struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID          *uuid.UUID     `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_price_lists_code"`
	Code              string         `gorm:"column:code;not null;uniqueIndex:uq_price_lists_code"`
	Name              string         `gorm:"column:name;not null"`
	Currency          enums.Currency `gorm:"column:currency;not null;default:'EUR'"`
	IsDefault         bool           `gorm:"column:is_default;not null;default:false"`
	IsDefaultPurchase bool           `gorm:"column:is_default_purchase;not null;default:false"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (PriceList) TableName() string { return "price_lists" }

func (p *PriceList) GetID() uuid.UUID         { return p.ID }
func (p *PriceList) TenantScopeID() *uuid.UUID { return p.TenantID }

// DefaultFlags exposes the flag columns and their proposed values to the
// defaults engine.
func (p *PriceList) DefaultFlags() map[string]bool {
	return map[string]bool{
		FlagDefault:         p.IsDefault,
		FlagDefaultPurchase: p.IsDefaultPurchase,
	}
}

// SetDefaultFlag toggles one of the price list's default flags by column
// name. It reports whether the name matched a flag this model carries.
func (p *PriceList) SetDefaultFlag(name string, value bool) bool {
	switch name {
	case FlagDefault:
		p.IsDefault = value
	case FlagDefaultPurchase:
		p.IsDefaultPurchase = value
	default:
		return false
	}
	return true
}
