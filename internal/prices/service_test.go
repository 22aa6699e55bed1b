package prices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/pkg/db/models"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
)

type fakePriceRepo struct {
	byID        map[uuid.UUID]*models.ProductPrice
	conflicting int64
	createErr   error

	created *models.ProductPrice
	updated *models.ProductPrice
	deleted *models.ProductPrice

	lastExcludeID uuid.UUID
	lastValidFrom time.Time
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{byID: map[uuid.UUID]*models.ProductPrice{}}
}

func (f *fakePriceRepo) Create(_ context.Context, price *models.ProductPrice) error {
	if f.createErr != nil {
		return f.createErr
	}
	if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	f.created = price
	f.byID[price.ID] = price
	return nil
}

func (f *fakePriceRepo) Update(_ context.Context, price *models.ProductPrice) error {
	f.updated = price
	f.byID[price.ID] = price
	return nil
}

func (f *fakePriceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.ProductPrice, error) {
	price, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *price
	return &cpy, nil
}

func (f *fakePriceRepo) ListForProduct(_ context.Context, productID uuid.UUID, _ *uuid.UUID) ([]models.ProductPrice, error) {
	var out []models.ProductPrice
	for _, price := range f.byID {
		if price.ProductID == productID {
			out = append(out, *price)
		}
	}
	return out, nil
}

func (f *fakePriceRepo) CountConflicting(_ context.Context, _, _ uuid.UUID, validFrom time.Time, excludeID uuid.UUID) (int64, error) {
	f.lastExcludeID = excludeID
	f.lastValidFrom = validFrom
	return f.conflicting, nil
}

func (f *fakePriceRepo) FindEffective(_ context.Context, productID, priceListID uuid.UUID, on time.Time) (*models.ProductPrice, error) {
	var best *models.ProductPrice
	for _, price := range f.byID {
		if price.ProductID != productID || price.PriceListID != priceListID {
			continue
		}
		if price.ValidFrom.After(on) {
			continue
		}
		if price.ValidTo != nil && price.ValidTo.Before(on) {
			continue
		}
		if best == nil || price.ValidFrom.After(best.ValidFrom) {
			best = price
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *best
	return &cpy, nil
}

func (f *fakePriceRepo) Delete(_ context.Context, price *models.ProductPrice) error {
	f.deleted = price
	delete(f.byID, price.ID)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validInput() PriceInput {
	return PriceInput{
		ProductID:   uuid.New(),
		PriceListID: uuid.New(),
		ValidFrom:   date(2026, time.March, 1),
		Price:       decimal.RequireFromString("19.99"),
	}
}

func newPriceService(t *testing.T, repo *fakePriceRepo) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreatePrice(t *testing.T) {
	repo := newFakePriceRepo()
	svc := newPriceService(t, repo)

	dto, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.created == nil || repo.created.ID != dto.ID {
		t.Fatal("price not persisted")
	}
	if repo.lastExcludeID != uuid.Nil {
		t.Fatal("create must not exclude any row from the pre-check")
	}
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc := newPriceService(t, newFakePriceRepo())
	input := validInput()
	input.Price = decimal.RequireFromString("-0.01")

	_, err := svc.Create(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if violation, ok := pkgerrors.Violation(err); !ok || violation.Fields[0] != "price" {
		t.Fatalf("violation must name the price field, got %+v", violation)
	}
}

func TestCreateRejectsExcessPrecision(t *testing.T) {
	svc := newPriceService(t, newFakePriceRepo())
	input := validInput()
	input.Price = decimal.RequireFromString("10.123456")

	_, err := svc.Create(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for 6 fraction digits, got %v", err)
	}

	input.Price = decimal.RequireFromString("10.12345")
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("5 fraction digits must pass, got %v", err)
	}
}

func TestCreateRejectsInvertedPeriod(t *testing.T) {
	svc := newPriceService(t, newFakePriceRepo())
	input := validInput()
	end := date(2026, time.February, 1)
	input.ValidTo = &end

	_, err := svc.Create(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAllowsSingleDayPeriod(t *testing.T) {
	svc := newPriceService(t, newFakePriceRepo())
	input := validInput()
	end := input.ValidFrom
	input.ValidTo = &end

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("valid_to equal to valid_from must pass, got %v", err)
	}
}

func TestCreateRejectsDuplicateStart(t *testing.T) {
	repo := newFakePriceRepo()
	repo.conflicting = 1
	svc := newPriceService(t, repo)

	_, err := svc.Create(context.Background(), validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	violation, ok := pkgerrors.Violation(err)
	if !ok || len(violation.Fields) != 3 {
		t.Fatalf("violation must name the key fields, got %+v", violation)
	}
}

func TestCreateTranslatesIndexRejection(t *testing.T) {
	repo := newFakePriceRepo()
	repo.createErr = errDuplicateIndex{}
	svc := newPriceService(t, repo)

	_, err := svc.Create(context.Background(), validInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict from index rejection, got %v", err)
	}
}

type errDuplicateIndex struct{}

func (errDuplicateIndex) Error() string {
	return `duplicate key value violates unique constraint "uq_product_prices_start"`
}

func TestUpdateExcludesEditedRow(t *testing.T) {
	repo := newFakePriceRepo()
	existing := &models.ProductPrice{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		PriceListID: uuid.New(),
		ValidFrom:   date(2026, time.March, 1),
		Price:       decimal.RequireFromString("10"),
	}
	repo.byID[existing.ID] = existing
	svc := newPriceService(t, repo)

	input := PriceInput{
		ProductID:   existing.ProductID,
		PriceListID: existing.PriceListID,
		ValidFrom:   existing.ValidFrom,
		Price:       decimal.RequireFromString("12.50"),
	}
	dto, err := svc.Update(context.Background(), existing.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.lastExcludeID != existing.ID {
		t.Fatalf("pre-check must exclude the edited row, excluded %s", repo.lastExcludeID)
	}
	if !dto.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("price not updated: %s", dto.Price)
	}
}

func TestUpdateUnknownPrice(t *testing.T) {
	svc := newPriceService(t, newFakePriceRepo())

	_, err := svc.Update(context.Background(), uuid.New(), validInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveEffectivePicksLatestStart(t *testing.T) {
	repo := newFakePriceRepo()
	productID := uuid.New()
	listID := uuid.New()
	old := &models.ProductPrice{
		ID: uuid.New(), ProductID: productID, PriceListID: listID,
		ValidFrom: date(2026, time.January, 1),
		Price:     decimal.RequireFromString("10"),
	}
	current := &models.ProductPrice{
		ID: uuid.New(), ProductID: productID, PriceListID: listID,
		ValidFrom: date(2026, time.March, 1),
		Price:     decimal.RequireFromString("12"),
	}
	repo.byID[old.ID] = old
	repo.byID[current.ID] = current
	svc := newPriceService(t, repo)

	dto, err := svc.ResolveEffective(context.Background(), productID, listID, date(2026, time.April, 15))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if dto.ID != current.ID {
		t.Fatalf("expected the March row, got %s starting %s", dto.ID, dto.ValidFrom)
	}

	_, err = svc.ResolveEffective(context.Background(), productID, listID, date(2025, time.December, 31))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found before any period, got %v", err)
	}
}

func TestDeletePrice(t *testing.T) {
	repo := newFakePriceRepo()
	existing := &models.ProductPrice{ID: uuid.New(), ProductID: uuid.New(), PriceListID: uuid.New(), ValidFrom: date(2026, time.March, 1)}
	repo.byID[existing.ID] = existing
	svc := newPriceService(t, repo)

	if err := svc.Delete(context.Background(), existing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deleted == nil || repo.deleted.ID != existing.ID {
		t.Fatal("price not deleted")
	}
}
