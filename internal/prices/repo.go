package prices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/pkg/db/models"
)

// Repository handles product price persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to price operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new price row.
func (r *Repository) Create(ctx context.Context, price *models.ProductPrice) error {
	return r.db.WithContext(ctx).Create(price).Error
}

// Update saves the provided price row.
func (r *Repository) Update(ctx context.Context, price *models.ProductPrice) error {
	if price == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).Save(price).Error
}

// FindByID loads one price row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductPrice, error) {
	var price models.ProductPrice
	if err := r.db.WithContext(ctx).First(&price, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

// ListForProduct returns a product's prices, optionally narrowed to one
// price list, newest start date first.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID, priceListID *uuid.UUID) ([]models.ProductPrice, error) {
	q := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if priceListID != nil {
		q = q.Where("price_list_id = ?", *priceListID)
	}
	var rows []models.ProductPrice
	if err := q.Order("valid_from DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountConflicting counts rows sharing (product, price list, start date).
// excludeID removes the row being edited from the check so saving a price
// without moving its start date does not collide with itself.
func (r *Repository) CountConflicting(ctx context.Context, productID, priceListID uuid.UUID, validFrom time.Time, excludeID uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.ProductPrice{}).
		Where("product_id = ? AND price_list_id = ? AND valid_from = ?", productID, priceListID, validFrom)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForPriceList counts price rows attached to the given price list.
// Used by the price list deletion guard.
func (r *Repository) CountForPriceList(ctx context.Context, priceListID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductPrice{}).
		Where("price_list_id = ?", priceListID).
		Count(&count).Error
	return count, err
}

// FindEffective returns the price in force on the given date: the row with
// the latest start date not after it whose end date, if any, has not
// passed. Ties on valid_from cannot happen under the uniqueness invariant.
func (r *Repository) FindEffective(ctx context.Context, productID, priceListID uuid.UUID, on time.Time) (*models.ProductPrice, error) {
	var price models.ProductPrice
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND price_list_id = ?", productID, priceListID).
		Where("valid_from <= ?", on).
		Where("valid_to IS NULL OR valid_to >= ?", on).
		Order("valid_from DESC").
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// Delete removes a price row.
func (r *Repository) Delete(ctx context.Context, price *models.ProductPrice) error {
	return r.db.WithContext(ctx).Delete(price).Error
}
