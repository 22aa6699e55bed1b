package tenants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/pkg/db/models"
)

// Repository handles tenant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to tenant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new tenant row.
func (r *Repository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// FindByID loads a tenant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByCode loads a tenant by its unique code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List returns all tenants ordered by code.
func (r *Repository) List(ctx context.Context) ([]models.Tenant, error) {
	var out []models.Tenant
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update saves the provided tenant.
func (r *Repository) Update(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).Save(tenant).Error
}
