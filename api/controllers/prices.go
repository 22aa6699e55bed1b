package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatura/catalog-backend/api/responses"
	"github.com/mercatura/catalog-backend/api/validators"
	"github.com/mercatura/catalog-backend/internal/prices"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
)

// priceDateLayout is the wire format for validity dates. Prices are
// day-granular, so plain dates rather than timestamps.
const priceDateLayout = "2006-01-02"

type priceWriteRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	PriceListID uuid.UUID `json:"price_list_id" validate:"required"`
	ValidFrom   string    `json:"valid_from" validate:"required"`
	ValidTo     *string   `json:"valid_to,omitempty"`
	Price       string    `json:"price" validate:"required"`
	TaxIncluded bool      `json:"tax_included"`
}

func (req priceWriteRequest) toInput() (prices.PriceInput, error) {
	validFrom, err := parsePriceDate(req.ValidFrom, "valid_from")
	if err != nil {
		return prices.PriceInput{}, err
	}

	var validTo *time.Time
	if req.ValidTo != nil && strings.TrimSpace(*req.ValidTo) != "" {
		parsed, err := parsePriceDate(*req.ValidTo, "valid_to")
		if err != nil {
			return prices.PriceInput{}, err
		}
		validTo = &parsed
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return prices.PriceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price amount").
			WithDetails(map[string]any{"field": "price"})
	}

	return prices.PriceInput{
		ProductID:   req.ProductID,
		PriceListID: req.PriceListID,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		Price:       price,
		TaxIncluded: req.TaxIncluded,
	}, nil
}

func PriceCreate(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceWriteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func PriceUpdate(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "priceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req priceWriteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func PriceDelete(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "priceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// PriceListForProduct returns the periods for one product, optionally
// restricted to a single price list.
func PriceListForProduct(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var priceListID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("price_list_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price list id").
						WithDetails(map[string]any{"field": "price_list_id"}))
				return
			}
			priceListID = &id
		}

		items, err := svc.ListForProduct(r.Context(), productID, priceListID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// PriceResolveEffective returns the price row in effect on a given date,
// defaulting to today.
func PriceResolveEffective(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priceListID, err := pathUUID(r, "priceListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		on := time.Now().UTC()
		if raw := strings.TrimSpace(r.URL.Query().Get("on")); raw != "" {
			on, err = parsePriceDate(raw, "on")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		dto, err := svc.ResolveEffective(r.Context(), productID, priceListID, on)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func parsePriceDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(priceDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date, expected YYYY-MM-DD").
			WithDetails(map[string]any{"field": field})
	}
	return parsed, nil
}
