package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/db/models"
)

// ProductDTO exposes product data in API responses.
type ProductDTO struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	TypeID        uuid.UUID  `json:"type_id"`
	StatusID      uuid.UUID  `json:"status_id"`
	TaxClassID    uuid.UUID  `json:"tax_class_id"`
	MeasureUnitID uuid.UUID  `json:"measure_unit_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	GroupID       *uuid.UUID `json:"group_id,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:            m.ID,
		TenantID:      m.TenantID,
		SKU:           m.SKU,
		Name:          m.Name,
		Description:   m.Description,
		TypeID:        m.TypeID,
		StatusID:      m.StatusID,
		TaxClassID:    m.TaxClassID,
		MeasureUnitID: m.MeasureUnitID,
		CategoryID:    m.CategoryID,
		GroupID:       m.GroupID,
		Tags:          []string(m.Tags),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
