package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
)

// GroupingService manages the non-defaultable grouping entities: the
// category tree and the flat product groups.
type GroupingService struct {
	client   *db.Client
	resolver defaults.Resolver
}

// NewGroupingService binds the grouping operations to the shared client.
func NewGroupingService(client *db.Client, resolver defaults.Resolver) (*GroupingService, error) {
	if client == nil {
		return nil, fmt.Errorf("grouping service: db client required")
	}
	return &GroupingService{client: client, resolver: resolver}, nil
}

// CreateCategoryInput captures creation-time data for a category node.
type CreateCategoryInput struct {
	TenantID *uuid.UUID
	Code     string
	Name     string
	ParentID *uuid.UUID
	Position int
}

// CreateCategory inserts a category node. The parent, when given, must
// exist in the same scope; a node can never be its own parent.
func (s *GroupingService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	code := strings.TrimSpace(strings.ToLower(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	if input.ParentID != nil {
		if _, err := s.loadCategory(ctx, *input.ParentID, input.TenantID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		TenantID: input.TenantID,
		Code:     code,
		Name:     strings.TrimSpace(input.Name),
		ParentID: input.ParentID,
		Position: input.Position,
	}
	if err := s.client.DB().WithContext(ctx).Create(category).Error; err != nil {
		return nil, s.translateGroupingErr(err, "uq_categories_code", input.TenantID)
	}
	return CategoryFromModel(category), nil
}

// MoveCategory reparents a node. Moving a node under itself or one of its
// descendants is rejected to keep the tree acyclic.
func (s *GroupingService) MoveCategory(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, position int) (*CategoryDTO, error) {
	category, err := s.loadCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
		}
		parent, err := s.loadCategory(ctx, *newParentID, category.TenantID)
		if err != nil {
			return nil, err
		}
		ancestor := parent
		for ancestor.ParentID != nil {
			if *ancestor.ParentID == id {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be moved under its own descendant")
			}
			ancestor, err = s.loadCategoryByID(ctx, *ancestor.ParentID)
			if err != nil {
				return nil, err
			}
		}
	}

	category.ParentID = newParentID
	category.Position = position
	if err := s.client.DB().WithContext(ctx).Save(category).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move category")
	}
	return CategoryFromModel(category), nil
}

// ListCategories returns the scope's categories ordered for tree display.
func (s *GroupingService) ListCategories(ctx context.Context, tenantID *uuid.UUID) ([]CategoryDTO, error) {
	scope := s.resolver.Resolve(tenantID)
	var rows []models.Category
	q := s.client.DB().WithContext(ctx).Model(&models.Category{})
	q = scope.Constrain(q, s.resolver.Column())
	if err := q.Order("position ASC, code ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *CategoryFromModel(&rows[i]))
	}
	return out, nil
}

// DeleteCategory removes a leaf node. Nodes with children or with products
// attached cannot be removed.
func (s *GroupingService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.loadCategoryByID(ctx, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.client.DB().WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", id).
		Count(&children).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count child categories")
	}
	if children > 0 {
		return pkgerrors.NewConstraintViolation(
			"category has child categories and cannot be deleted",
			pkgerrors.ConstraintViolation{TenantID: category.TenantID, Reason: "move or delete the children first"},
		)
	}

	var products int64
	if err := s.client.DB().WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&products).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if products > 0 {
		return pkgerrors.NewConstraintViolation(
			"category still has products assigned and cannot be deleted",
			pkgerrors.ConstraintViolation{TenantID: category.TenantID, Reason: "reassign the products first"},
		)
	}

	if err := s.client.DB().WithContext(ctx).Delete(category).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// CreateProductGroupInput captures creation-time data for a product group.
type CreateProductGroupInput struct {
	TenantID *uuid.UUID
	Code     string
	Name     string
}

// CreateProductGroup inserts a flat product group.
func (s *GroupingService) CreateProductGroup(ctx context.Context, input CreateProductGroupInput) (*ProductGroupDTO, error) {
	code := strings.TrimSpace(strings.ToLower(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product group code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product group name is required")
	}

	group := &models.ProductGroup{
		TenantID: input.TenantID,
		Code:     code,
		Name:     strings.TrimSpace(input.Name),
	}
	if err := s.client.DB().WithContext(ctx).Create(group).Error; err != nil {
		return nil, s.translateGroupingErr(err, "uq_product_groups_code", input.TenantID)
	}
	return ProductGroupFromModel(group), nil
}

// ListProductGroups returns the scope's product groups ordered by code.
func (s *GroupingService) ListProductGroups(ctx context.Context, tenantID *uuid.UUID) ([]ProductGroupDTO, error) {
	scope := s.resolver.Resolve(tenantID)
	var rows []models.ProductGroup
	q := s.client.DB().WithContext(ctx).Model(&models.ProductGroup{})
	q = scope.Constrain(q, s.resolver.Column())
	if err := q.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product groups")
	}
	out := make([]ProductGroupDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ProductGroupFromModel(&rows[i]))
	}
	return out, nil
}

// DeleteProductGroup removes a group that no product references.
func (s *GroupingService) DeleteProductGroup(ctx context.Context, id uuid.UUID) error {
	var group models.ProductGroup
	if err := s.client.DB().WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product group not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product group")
	}

	var products int64
	if err := s.client.DB().WithContext(ctx).
		Model(&models.Product{}).
		Where("group_id = ?", id).
		Count(&products).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count group products")
	}
	if products > 0 {
		return pkgerrors.NewConstraintViolation(
			"product group still has products assigned and cannot be deleted",
			pkgerrors.ConstraintViolation{TenantID: group.TenantID, Reason: "reassign the products first"},
		)
	}

	if err := s.client.DB().WithContext(ctx).Delete(&group).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product group")
	}
	return nil
}

func (s *GroupingService) loadCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.client.DB().WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return &category, nil
}

func (s *GroupingService) loadCategory(ctx context.Context, id uuid.UUID, tenantID *uuid.UUID) (*models.Category, error) {
	category, err := s.loadCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := s.resolver.Resolve(tenantID)
	if !scope.IsGlobal() {
		if (category.TenantID == nil) != (tenantID == nil) ||
			(category.TenantID != nil && tenantID != nil && *category.TenantID != *tenantID) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category belongs to a different scope")
		}
	}
	return category, nil
}

func (s *GroupingService) translateGroupingErr(err error, constraint string, tenantID *uuid.UUID) error {
	if db.IsUniqueViolation(err, constraint) {
		return pkgerrors.NewConstraintViolation(
			"code is already in use within this scope",
			pkgerrors.ConstraintViolation{Fields: []string{"code"}, TenantID: tenantID, Reason: "codes are unique per tenant"},
		)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist record")
}
