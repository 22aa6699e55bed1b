package models

import (
	"time"

	"github.com/google/uuid"
)

// MeasureUnit is the unit products are quantified in (piece, kg, liter).
type MeasureUnit struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  *uuid.UUID `gorm:"column:tenant_id;type:uuid;uniqueIndex:uq_measure_units_code"`
	Code      string     `gorm:"column:code;not null;uniqueIndex:uq_measure_units_code"`
	Name      string     `gorm:"column:name;not null"`
	Symbol    string     `gorm:"column:symbol;not null"`
	IsDefault bool       `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (MeasureUnit) TableName() string { return "measure_units" }

func (m *MeasureUnit) GetID() uuid.UUID          { return m.ID }
func (m *MeasureUnit) TenantScopeID() *uuid.UUID { return m.TenantID }

func (m *MeasureUnit) DefaultFlags() map[string]bool {
	return map[string]bool{FlagDefault: m.IsDefault}
}

func (m *MeasureUnit) SetDefaultFlag(name string, value bool) bool {
	if name != FlagDefault {
		return false
	}
	m.IsDefault = value
	return true
}
