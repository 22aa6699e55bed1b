package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/config"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/pagination"
)

type fakeProductRepo struct {
	byID map[uuid.UUID]*models.Product

	created *models.Product
	updated *models.Product
	deleted uuid.UUID

	createErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: map[uuid.UUID]*models.Product{}}
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *product
	return &cpy, nil
}

func (f *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.created = product
	f.byID[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *models.Product) error {
	f.updated = product
	f.byID[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = id
	delete(f.byID, id)
	return nil
}

func (f *fakeProductRepo) List(_ context.Context, _ defaults.Scope, _ ListProductsInput) ([]models.Product, *pagination.Cursor, error) {
	var out []models.Product
	for _, product := range f.byID {
		out = append(out, *product)
	}
	return out, nil, nil
}

type fakeTypeResolver struct {
	def  *models.ProductType
	byID map[uuid.UUID]*models.ProductType
}

func (f *fakeTypeResolver) GetByID(_ context.Context, id uuid.UUID) (*models.ProductType, error) {
	if rec, ok := f.byID[id]; ok {
		return rec, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product_type not found")
}

func (f *fakeTypeResolver) GetDefault(_ context.Context, _ string, _ *uuid.UUID) (*models.ProductType, error) {
	if f.def == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no default product_type configured for this scope")
	}
	return f.def, nil
}

type fakeStatusResolver struct {
	def  *models.ProductStatus
	byID map[uuid.UUID]*models.ProductStatus
}

func (f *fakeStatusResolver) GetByID(_ context.Context, id uuid.UUID) (*models.ProductStatus, error) {
	if rec, ok := f.byID[id]; ok {
		return rec, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product_status not found")
}

func (f *fakeStatusResolver) GetDefault(_ context.Context, _ string, _ *uuid.UUID) (*models.ProductStatus, error) {
	if f.def == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no default product_status configured for this scope")
	}
	return f.def, nil
}

type fakeTaxResolver struct {
	def *models.TaxClass
}

func (f *fakeTaxResolver) GetByID(_ context.Context, id uuid.UUID) (*models.TaxClass, error) {
	return &models.TaxClass{ID: id}, nil
}

func (f *fakeTaxResolver) GetDefault(_ context.Context, _ string, _ *uuid.UUID) (*models.TaxClass, error) {
	if f.def == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no default tax_class configured for this scope")
	}
	return f.def, nil
}

type fakeUnitResolver struct {
	def *models.MeasureUnit
}

func (f *fakeUnitResolver) GetByID(_ context.Context, id uuid.UUID) (*models.MeasureUnit, error) {
	return &models.MeasureUnit{ID: id}, nil
}

func (f *fakeUnitResolver) GetDefault(_ context.Context, _ string, _ *uuid.UUID) (*models.MeasureUnit, error) {
	if f.def == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no default measure_unit configured for this scope")
	}
	return f.def, nil
}

type testDeps struct {
	repo     *fakeProductRepo
	types    *fakeTypeResolver
	statuses *fakeStatusResolver
	taxes    *fakeTaxResolver
	units    *fakeUnitResolver
}

func newDepsWithDefaults() testDeps {
	return testDeps{
		repo:     newFakeProductRepo(),
		types:    &fakeTypeResolver{def: &models.ProductType{ID: uuid.New(), Code: "goods"}, byID: map[uuid.UUID]*models.ProductType{}},
		statuses: &fakeStatusResolver{def: &models.ProductStatus{ID: uuid.New(), Code: "draft"}, byID: map[uuid.UUID]*models.ProductStatus{}},
		taxes:    &fakeTaxResolver{def: &models.TaxClass{ID: uuid.New(), Code: "standard"}},
		units:    &fakeUnitResolver{def: &models.MeasureUnit{ID: uuid.New(), Code: "piece"}},
	}
}

func newProductService(t *testing.T, deps testDeps) Service {
	t.Helper()
	svc, err := NewService(
		deps.repo, deps.types, deps.statuses, deps.taxes, deps.units,
		defaults.NewResolver(config.TenancyConfig{Enabled: true, TenantForeignKey: "tenant_id"}),
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateProductFallsBackToDefaults(t *testing.T) {
	deps := newDepsWithDefaults()
	svc := newProductService(t, deps)
	tenant := uuid.New()

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		TenantID: &tenant,
		SKU:      " widget-1 ",
		Name:     "Widget",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.SKU != "WIDGET-1" {
		t.Fatalf("sku not normalized: %q", dto.SKU)
	}
	if dto.TypeID != deps.types.def.ID {
		t.Fatal("type did not fall back to the scope default")
	}
	if dto.StatusID != deps.statuses.def.ID {
		t.Fatal("status did not fall back to the scope default")
	}
	if dto.TaxClassID != deps.taxes.def.ID {
		t.Fatal("tax class did not fall back to the scope default")
	}
	if dto.MeasureUnitID != deps.units.def.ID {
		t.Fatal("unit did not fall back to the scope default")
	}
	if !dto.IsActive {
		t.Fatal("new products default to active")
	}
}

func TestCreateProductExplicitReferencesWin(t *testing.T) {
	deps := newDepsWithDefaults()
	explicitType := &models.ProductType{ID: uuid.New(), Code: "service"}
	deps.types.byID[explicitType.ID] = explicitType
	svc := newProductService(t, deps)

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:    "SVC-1",
		Name:   "Consulting",
		TypeID: &explicitType.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.TypeID != explicitType.ID {
		t.Fatal("explicit type must not be replaced by the default")
	}
}

func TestCreateProductMissingDefaultIsActionable(t *testing.T) {
	deps := newDepsWithDefaults()
	deps.statuses.def = nil
	svc := newProductService(t, deps)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{SKU: "X", Name: "X"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	violation, ok := pkgerrors.Violation(err)
	if !ok || violation.Fields[0] != "status_id" {
		t.Fatalf("error must tell the caller which field to set, got %+v", violation)
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	deps := newDepsWithDefaults()
	deps.repo.createErr = errDuplicateSKU{}
	svc := newProductService(t, deps)
	tenant := uuid.New()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{TenantID: &tenant, SKU: "DUP", Name: "Dup"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

type errDuplicateSKU struct{}

func (errDuplicateSKU) Error() string {
	return `duplicate key value violates unique constraint "uq_products_sku"`
}

func TestUpdateProductPartialFields(t *testing.T) {
	deps := newDepsWithDefaults()
	existing := &models.Product{
		ID:            uuid.New(),
		SKU:           "KEEP-1",
		Name:          "Old name",
		TypeID:        deps.types.def.ID,
		StatusID:      deps.statuses.def.ID,
		TaxClassID:    deps.taxes.def.ID,
		MeasureUnitID: deps.units.def.ID,
		IsActive:      true,
	}
	deps.repo.byID[existing.ID] = existing
	svc := newProductService(t, deps)

	name := "New name"
	inactive := false
	dto, err := svc.UpdateProduct(context.Background(), existing.ID, UpdateProductInput{
		Name:     &name,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Name != "New name" || dto.IsActive {
		t.Fatalf("update not applied: %+v", dto)
	}
	if dto.SKU != "KEEP-1" || dto.StatusID != deps.statuses.def.ID {
		t.Fatal("untouched fields must survive")
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	svc := newProductService(t, newDepsWithDefaults())

	err := svc.DeleteProduct(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProductsRejectsBadCursor(t *testing.T) {
	svc := newProductService(t, newDepsWithDefaults())

	_, err := svc.ListProducts(context.Background(), nil, ProductListFilters{}, 10, "garbage")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
