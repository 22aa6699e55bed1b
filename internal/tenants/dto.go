package tenants

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
)

// TenantDTO exposes tenant data in API responses.
type TenantDTO struct {
	ID        uuid.UUID          `json:"id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Status    enums.TenantStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// FromModel maps the persisted tenant into a DTO.
func FromModel(m *models.Tenant) *TenantDTO {
	if m == nil {
		return nil
	}
	return &TenantDTO{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
