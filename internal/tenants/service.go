package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
)

type tenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindByCode(ctx context.Context, code string) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
}

// Service exposes tenant operations.
type Service interface {
	Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error)
	List(ctx context.Context) ([]TenantDTO, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.TenantStatus) (*TenantDTO, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*TenantDTO, error)
}

type service struct {
	repo tenantRepository
}

// NewService builds a tenant service with the provided repository.
func NewService(repo tenantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	return &service{repo: repo}, nil
}

// CreateTenantInput captures creation-time tenant data.
type CreateTenantInput struct {
	Code string
	Name string
}

func (s *service) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	code := strings.TrimSpace(strings.ToLower(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant code is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name is required")
	}

	tenant := &models.Tenant{
		Code:   code,
		Name:   name,
		Status: enums.TenantStatusActive,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		if db.IsUniqueViolation(err, "uq_tenants_code") {
			return nil, pkgerrors.NewConstraintViolation(
				fmt.Sprintf("tenant code %q is already taken", code),
				pkgerrors.ConstraintViolation{Fields: []string{"code"}, Reason: "codes are unique across tenants"},
			)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}
	return FromModel(tenant), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	return FromModel(tenant), nil
}

func (s *service) List(ctx context.Context) ([]TenantDTO, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenants")
	}
	out := make([]TenantDTO, 0, len(tenants))
	for i := range tenants {
		out = append(out, *FromModel(&tenants[i]))
	}
	return out, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.TenantStatus) (*TenantDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tenant status %q", status))
	}
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	tenant.Status = status
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant status")
	}
	return FromModel(tenant), nil
}

func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) (*TenantDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name is required")
	}
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	tenant.Name = name
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename tenant")
	}
	return FromModel(tenant), nil
}
