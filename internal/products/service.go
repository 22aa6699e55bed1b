package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
	"github.com/mercatura/catalog-backend/pkg/pagination"
)

// Service defines catalogue product operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, tenantID *uuid.UUID, filters ProductListFilters, limit int, cursor string) (*ProductListResult, error)
}

// CreateProductInput captures creation-time product data. Classification
// references left nil fall back to the scope's defaults.
type CreateProductInput struct {
	TenantID      *uuid.UUID
	SKU           string
	Name          string
	Description   *string
	TypeID        *uuid.UUID
	StatusID      *uuid.UUID
	TaxClassID    *uuid.UUID
	MeasureUnitID *uuid.UUID
	CategoryID    *uuid.UUID
	GroupID       *uuid.UUID
	Tags          []string
	IsActive      *bool
}

// UpdateProductInput captures the mutable product fields. Nil pointers
// leave the stored value untouched.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	TypeID        *uuid.UUID
	StatusID      *uuid.UUID
	TaxClassID    *uuid.UUID
	MeasureUnitID *uuid.UUID
	CategoryID    *uuid.UUID
	GroupID       *uuid.UUID
	Tags          *[]string
	IsActive      *bool
}

type typeResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductType, error)
	GetDefault(ctx context.Context, flag string, tenantID *uuid.UUID) (*models.ProductType, error)
}

type statusResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductStatus, error)
	GetDefault(ctx context.Context, flag string, tenantID *uuid.UUID) (*models.ProductStatus, error)
}

type taxClassResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TaxClass, error)
	GetDefault(ctx context.Context, flag string, tenantID *uuid.UUID) (*models.TaxClass, error)
}

type unitResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.MeasureUnit, error)
	GetDefault(ctx context.Context, flag string, tenantID *uuid.UUID) (*models.MeasureUnit, error)
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope defaults.Scope, input ListProductsInput) ([]models.Product, *pagination.Cursor, error)
}

type service struct {
	repo     productRepository
	types    typeResolver
	statuses statusResolver
	taxes    taxClassResolver
	units    unitResolver
	resolver defaults.Resolver
	log      *logger.Logger
}

// NewService wires product dependencies.
func NewService(repo productRepository, types typeResolver, statuses statusResolver, taxes taxClassResolver, units unitResolver, resolver defaults.Resolver, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if types == nil || statuses == nil || taxes == nil || units == nil {
		return nil, fmt.Errorf("classification resolvers required")
	}
	return &service{
		repo:     repo,
		types:    types,
		statuses: statuses,
		taxes:    taxes,
		units:    units,
		resolver: resolver,
		log:      log,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	typeID, err := s.resolveTypeID(ctx, input.TenantID, input.TypeID)
	if err != nil {
		return nil, err
	}
	statusID, err := s.resolveStatusID(ctx, input.TenantID, input.StatusID)
	if err != nil {
		return nil, err
	}
	taxClassID, err := s.resolveTaxClassID(ctx, input.TenantID, input.TaxClassID)
	if err != nil {
		return nil, err
	}
	unitID, err := s.resolveUnitID(ctx, input.TenantID, input.MeasureUnitID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		TenantID:      input.TenantID,
		SKU:           sku,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		TypeID:        typeID,
		StatusID:      statusID,
		TaxClassID:    taxClassID,
		MeasureUnitID: unitID,
		CategoryID:    input.CategoryID,
		GroupID:       input.GroupID,
		Tags:          pq.StringArray(input.Tags),
		IsActive:      true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "uq_products_sku") {
			return nil, pkgerrors.NewConstraintViolation(
				fmt.Sprintf("sku %q is already in use within this scope", sku),
				pkgerrors.ConstraintViolation{Fields: []string{"sku"}, TenantID: input.TenantID, Reason: "skus are unique per tenant"},
			)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if s.log != nil {
		lctx := s.log.WithEntity(ctx, product.TableName(), product.ID.String())
		s.log.Info(lctx, "product created")
	}
	return FromModel(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.TypeID != nil {
		if _, err := s.types.GetByID(ctx, *input.TypeID); err != nil {
			return nil, err
		}
		product.TypeID = *input.TypeID
	}
	if input.StatusID != nil {
		if _, err := s.statuses.GetByID(ctx, *input.StatusID); err != nil {
			return nil, err
		}
		product.StatusID = *input.StatusID
	}
	if input.TaxClassID != nil {
		if _, err := s.taxes.GetByID(ctx, *input.TaxClassID); err != nil {
			return nil, err
		}
		product.TaxClassID = *input.TaxClassID
	}
	if input.MeasureUnitID != nil {
		if _, err := s.units.GetByID(ctx, *input.MeasureUnitID); err != nil {
			return nil, err
		}
		product.MeasureUnitID = *input.MeasureUnitID
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.GroupID != nil {
		product.GroupID = input.GroupID
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(*input.Tags)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) ListProducts(ctx context.Context, tenantID *uuid.UUID, filters ProductListFilters, limit int, cursor string) (*ProductListResult, error) {
	input := ListProductsInput{
		TenantID: tenantID,
		Filters:  filters,
		Limit:    limit,
	}
	if cursor != "" {
		parsed, err := pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		input.Cursor = parsed
	}

	scope := s.resolver.Resolve(tenantID)
	rows, next, err := s.repo.List(ctx, scope, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ProductListResult{Items: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// resolveTypeID falls back to the scope's default product type when the
// caller did not pick one.
func (s *service) resolveTypeID(ctx context.Context, tenantID, given *uuid.UUID) (uuid.UUID, error) {
	if given != nil {
		rec, err := s.types.GetByID(ctx, *given)
		if err != nil {
			return uuid.Nil, err
		}
		return rec.ID, nil
	}
	rec, err := s.types.GetDefault(ctx, models.FlagDefault, tenantID)
	if err != nil {
		return uuid.Nil, missingDefault(err, "product type", "type_id")
	}
	return rec.ID, nil
}

func (s *service) resolveStatusID(ctx context.Context, tenantID, given *uuid.UUID) (uuid.UUID, error) {
	if given != nil {
		rec, err := s.statuses.GetByID(ctx, *given)
		if err != nil {
			return uuid.Nil, err
		}
		return rec.ID, nil
	}
	rec, err := s.statuses.GetDefault(ctx, models.FlagDefault, tenantID)
	if err != nil {
		return uuid.Nil, missingDefault(err, "product status", "status_id")
	}
	return rec.ID, nil
}

func (s *service) resolveTaxClassID(ctx context.Context, tenantID, given *uuid.UUID) (uuid.UUID, error) {
	if given != nil {
		rec, err := s.taxes.GetByID(ctx, *given)
		if err != nil {
			return uuid.Nil, err
		}
		return rec.ID, nil
	}
	rec, err := s.taxes.GetDefault(ctx, models.FlagDefault, tenantID)
	if err != nil {
		return uuid.Nil, missingDefault(err, "tax class", "tax_class_id")
	}
	return rec.ID, nil
}

func (s *service) resolveUnitID(ctx context.Context, tenantID, given *uuid.UUID) (uuid.UUID, error) {
	if given != nil {
		rec, err := s.units.GetByID(ctx, *given)
		if err != nil {
			return uuid.Nil, err
		}
		return rec.ID, nil
	}
	rec, err := s.units.GetDefault(ctx, models.FlagDefault, tenantID)
	if err != nil {
		return uuid.Nil, missingDefault(err, "measure unit", "measure_unit_id")
	}
	return rec.ID, nil
}

// missingDefault maps a missing-default lookup into a validation error on
// the field the caller should have specified.
func missingDefault(err error, entity, field string) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return pkgerrors.NewFieldValidation(
			fmt.Sprintf("no default %s configured for this scope, set %s explicitly", entity, field),
			pkgerrors.ConstraintViolation{Fields: []string{field}, Reason: "scope has no default to fall back to"},
		)
	}
	return err
}
