package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UniqueProductPriceStart is the storage constraint behind the
// (product, price list, valid_from) invariant. The application pre-check is
// advisory; this index is the authoritative guarantee.
const UniqueProductPriceStart = "uq_product_prices_start"

// ProductPrice is one price row of a product within a price list. Validity
// periods are inclusive; ValidTo nil means open-ended. Periods may overlap,
// only identical start dates are rejected.
type ProductPrice struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_product_prices_start"`
	PriceListID uuid.UUID       `gorm:"column:price_list_id;type:uuid;not null;uniqueIndex:uq_product_prices_start"`
	ValidFrom   time.Time       `gorm:"column:valid_from;type:date;not null;uniqueIndex:uq_product_prices_start"`
	ValidTo     *time.Time      `gorm:"column:valid_to;type:date"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(15,5);not null"`
	TaxIncluded bool            `gorm:"column:tax_included;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductPrice) TableName() string { return "product_prices" }
