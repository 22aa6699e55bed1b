package prices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatura/catalog-backend/pkg/db/models"
)

// PriceDTO exposes price rows in API responses.
type PriceDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	PriceListID uuid.UUID       `json:"price_list_id"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidTo     *time.Time      `json:"valid_to,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TaxIncluded bool            `json:"tax_included"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FromModel maps the persisted price row into a DTO.
func FromModel(m *models.ProductPrice) *PriceDTO {
	if m == nil {
		return nil
	}
	return &PriceDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		PriceListID: m.PriceListID,
		ValidFrom:   m.ValidFrom,
		ValidTo:     m.ValidTo,
		Price:       m.Price,
		TaxIncluded: m.TaxIncluded,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
