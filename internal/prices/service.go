package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/metrics"
)

// maxPriceFractionDigits matches the numeric(15,5) price column.
const maxPriceFractionDigits = 5

type priceRepository interface {
	Create(ctx context.Context, price *models.ProductPrice) error
	Update(ctx context.Context, price *models.ProductPrice) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProductPrice, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, priceListID *uuid.UUID) ([]models.ProductPrice, error)
	CountConflicting(ctx context.Context, productID, priceListID uuid.UUID, validFrom time.Time, excludeID uuid.UUID) (int64, error)
	FindEffective(ctx context.Context, productID, priceListID uuid.UUID, on time.Time) (*models.ProductPrice, error)
	Delete(ctx context.Context, price *models.ProductPrice) error
}

// Service exposes product price operations.
type Service interface {
	Create(ctx context.Context, input PriceInput) (*PriceDTO, error)
	Update(ctx context.Context, id uuid.UUID, input PriceInput) (*PriceDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, priceListID *uuid.UUID) ([]PriceDTO, error)
	ResolveEffective(ctx context.Context, productID, priceListID uuid.UUID, on time.Time) (*PriceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    priceRepository
	metrics *metrics.DefaultsMetrics
}

// NewService builds the price service.
func NewService(repo priceRepository, m *metrics.DefaultsMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("price repository required")
	}
	return &service{repo: repo, metrics: m}, nil
}

// PriceInput captures a price row submission.
type PriceInput struct {
	ProductID   uuid.UUID
	PriceListID uuid.UUID
	ValidFrom   time.Time
	ValidTo     *time.Time
	Price       decimal.Decimal
	TaxIncluded bool
}

func (s *service) Create(ctx context.Context, input PriceInput) (*PriceDTO, error) {
	if err := s.validate(ctx, input, uuid.Nil); err != nil {
		return nil, err
	}

	price := &models.ProductPrice{
		ProductID:   input.ProductID,
		PriceListID: input.PriceListID,
		ValidFrom:   truncateToDate(input.ValidFrom),
		ValidTo:     truncateDatePtr(input.ValidTo),
		Price:       input.Price,
		TaxIncluded: input.TaxIncluded,
	}
	if err := s.repo.Create(ctx, price); err != nil {
		return nil, s.translateWriteErr(input, err)
	}
	return FromModel(price), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PriceInput) (*PriceDTO, error) {
	price, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price")
	}

	// The edited row itself is excluded from the duplicate pre-check:
	// keeping the same start date is always legal.
	if err := s.validate(ctx, input, price.ID); err != nil {
		return nil, err
	}

	price.ProductID = input.ProductID
	price.PriceListID = input.PriceListID
	price.ValidFrom = truncateToDate(input.ValidFrom)
	price.ValidTo = truncateDatePtr(input.ValidTo)
	price.Price = input.Price
	price.TaxIncluded = input.TaxIncluded
	if err := s.repo.Update(ctx, price); err != nil {
		return nil, s.translateWriteErr(input, err)
	}
	return FromModel(price), nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, priceListID *uuid.UUID) ([]PriceDTO, error) {
	rows, err := s.repo.ListForProduct(ctx, productID, priceListID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prices")
	}
	out := make([]PriceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ResolveEffective(ctx context.Context, productID, priceListID uuid.UUID, on time.Time) (*PriceDTO, error) {
	price, err := s.repo.FindEffective(ctx, productID, priceListID, truncateToDate(on))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no price in force on that date")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve price")
	}
	return FromModel(price), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	price, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price")
	}
	if err := s.repo.Delete(ctx, price); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price")
	}
	return nil
}

// validate runs the field checks and the advisory duplicate pre-check. The
// unique index remains the authoritative guard; the pre-check exists to
// return a friendly error in the common single-writer case.
func (s *service) validate(ctx context.Context, input PriceInput, excludeID uuid.UUID) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.PriceListID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price list id is required")
	}
	if input.ValidFrom.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_from is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.NewFieldValidation("price must not be negative",
			pkgerrors.ConstraintViolation{Fields: []string{"price"}, Reason: "negative prices are not allowed"})
	}
	if input.Price.Exponent() < -maxPriceFractionDigits {
		return pkgerrors.NewFieldValidation(
			fmt.Sprintf("price precision exceeds %d fraction digits", maxPriceFractionDigits),
			pkgerrors.ConstraintViolation{Fields: []string{"price"}, Reason: "storage column is numeric(15,5)"})
	}
	if input.ValidTo != nil && truncateToDate(*input.ValidTo).Before(truncateToDate(input.ValidFrom)) {
		return pkgerrors.NewFieldValidation("valid_to must not be before valid_from",
			pkgerrors.ConstraintViolation{Fields: []string{"valid_from", "valid_to"}, Reason: "validity periods are inclusive"})
	}

	count, err := s.repo.CountConflicting(ctx, input.ProductID, input.PriceListID, truncateToDate(input.ValidFrom), excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check price uniqueness")
	}
	if count > 0 {
		s.metrics.IncViolation("duplicate_price_start")
		return s.duplicateErr(input)
	}
	return nil
}

func (s *service) translateWriteErr(input PriceInput, err error) error {
	if db.IsUniqueViolation(err, models.UniqueProductPriceStart) {
		s.metrics.IncViolation("duplicate_price_start")
		return s.duplicateErr(input)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist price")
}

func (s *service) duplicateErr(input PriceInput) error {
	return pkgerrors.NewConstraintViolation(
		fmt.Sprintf("a price for this product and price list already starts on %s", truncateToDate(input.ValidFrom).Format("2006-01-02")),
		pkgerrors.ConstraintViolation{
			Fields: []string{"product_id", "price_list_id", "valid_from"},
			Reason: "start dates are unique per product and price list",
		},
	)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := truncateToDate(*t)
	return &d
}
