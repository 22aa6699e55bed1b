package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/pagination"
)

// Repository handles catalogue product persistence.
type Repository struct {
	db     *gorm.DB
	column string
}

// NewRepository binds a GORM DB to product operations. The column is the
// tenant foreign key used to constrain scoped queries.
func NewRepository(db *gorm.DB, column string) *Repository {
	return &Repository{db: db, column: column}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx, column: r.column}
}

// FindByID loads a product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create persists a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product. Price rows cascade at the storage layer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// CountUsingReference counts products referencing the given catalogue
// record through the named column. Used by the deletion guards.
func (r *Repository) CountUsingReference(ctx context.Context, column string, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(column+" = ?", id).
		Count(&count).Error
	return count, err
}

// List returns one cursor page of products in the scope, newest first.
func (r *Repository) List(ctx context.Context, scope defaults.Scope, input ListProductsInput) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(input.Limit)
	normalized := pagination.NormalizeLimit(input.Limit)

	q := r.db.WithContext(ctx).Model(&models.Product{})
	q = scope.Constrain(q, "products."+r.column)
	q = applyFilters(q, input.Filters)
	if input.Filters.SellableOnly {
		q = q.Joins("JOIN product_statuses ON product_statuses.id = products.status_id").
			Where("product_statuses.allows_sale = ?", true)
	}
	if input.Cursor != nil {
		q = q.Where("(products.created_at, products.id) < (?, ?)", input.Cursor.CreatedAt, input.Cursor.ID)
	}

	var rows []models.Product
	if err := q.Order("products.created_at DESC, products.id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func applyFilters(q *gorm.DB, filters ProductListFilters) *gorm.DB {
	if filters.TypeID != nil {
		q = q.Where("products.type_id = ?", *filters.TypeID)
	}
	if filters.StatusID != nil {
		q = q.Where("products.status_id = ?", *filters.StatusID)
	}
	if filters.CategoryID != nil {
		q = q.Where("products.category_id = ?", *filters.CategoryID)
	}
	if filters.GroupID != nil {
		q = q.Where("products.group_id = ?", *filters.GroupID)
	}
	if filters.IsActive != nil {
		q = q.Where("products.is_active = ?", *filters.IsActive)
	}
	if filters.Tag != "" {
		q = q.Where("? = ANY(products.tags)", filters.Tag)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		q = q.Where("products.sku ILIKE ? OR products.name ILIKE ?", like, like)
	}
	return q
}
