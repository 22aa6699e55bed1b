package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
)

// PriceListDTO exposes price list data in API responses.
type PriceListDTO struct {
	ID                uuid.UUID      `json:"id"`
	TenantID          *uuid.UUID     `json:"tenant_id,omitempty"`
	Code              string         `json:"code"`
	Name              string         `json:"name"`
	Currency          enums.Currency `json:"currency"`
	IsDefault         bool           `json:"is_default"`
	IsDefaultPurchase bool           `json:"is_default_purchase"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// PriceListFromModel maps the persisted price list into a DTO.
func PriceListFromModel(m *models.PriceList) *PriceListDTO {
	if m == nil {
		return nil
	}
	return &PriceListDTO{
		ID:                m.ID,
		TenantID:          m.TenantID,
		Code:              m.Code,
		Name:              m.Name,
		Currency:          m.Currency,
		IsDefault:         m.IsDefault,
		IsDefaultPurchase: m.IsDefaultPurchase,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// ProductTypeDTO exposes product type data in API responses.
type ProductTypeDTO struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	IsDefault bool       `json:"is_default"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func ProductTypeFromModel(m *models.ProductType) *ProductTypeDTO {
	if m == nil {
		return nil
	}
	return &ProductTypeDTO{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Code:      m.Code,
		Name:      m.Name,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ProductStatusDTO exposes product status data in API responses.
type ProductStatusDTO struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	AllowsSale bool       `json:"allows_sale"`
	IsDefault  bool       `json:"is_default"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func ProductStatusFromModel(m *models.ProductStatus) *ProductStatusDTO {
	if m == nil {
		return nil
	}
	return &ProductStatusDTO{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Code:       m.Code,
		Name:       m.Name,
		AllowsSale: m.AllowsSale,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// TaxClassDTO exposes tax class data in API responses.
type TaxClassDTO struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  *uuid.UUID      `json:"tenant_id,omitempty"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	IsDefault bool            `json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func TaxClassFromModel(m *models.TaxClass) *TaxClassDTO {
	if m == nil {
		return nil
	}
	return &TaxClassDTO{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Code:      m.Code,
		Name:      m.Name,
		Rate:      m.Rate,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// MeasureUnitDTO exposes measure unit data in API responses.
type MeasureUnitDTO struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Symbol    string     `json:"symbol"`
	IsDefault bool       `json:"is_default"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func MeasureUnitFromModel(m *models.MeasureUnit) *MeasureUnitDTO {
	if m == nil {
		return nil
	}
	return &MeasureUnitDTO{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Code:      m.Code,
		Name:      m.Name,
		Symbol:    m.Symbol,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CategoryDTO exposes category data in API responses.
type CategoryDTO struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func CategoryFromModel(m *models.Category) *CategoryDTO {
	if m == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Code:      m.Code,
		Name:      m.Name,
		ParentID:  m.ParentID,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ProductGroupDTO exposes product group data in API responses.
type ProductGroupDTO struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func ProductGroupFromModel(m *models.ProductGroup) *ProductGroupDTO {
	if m == nil {
		return nil
	}
	return &ProductGroupDTO{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Code:      m.Code,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
