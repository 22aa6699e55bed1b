package controllers

import (
	"net/http"
	"strings"

	"github.com/mercatura/catalog-backend/api/middleware"
	"github.com/mercatura/catalog-backend/api/responses"
	"github.com/mercatura/catalog-backend/api/validators"
	"github.com/mercatura/catalog-backend/internal/catalog"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
)

// PriceListService is the concrete instantiation handled by this controller.
type PriceListService = catalog.Service[models.PriceList, *models.PriceList]

type priceListCreateRequest struct {
	Code              string `json:"code" validate:"required,min=1,max=64"`
	Name              string `json:"name" validate:"required,min=1,max=255"`
	Currency          string `json:"currency" validate:"required"`
	IsDefault         bool   `json:"is_default"`
	IsDefaultPurchase bool   `json:"is_default_purchase"`
}

func PriceListCreate(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceListCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := enums.ParseCurrency(req.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		rec := &models.PriceList{
			TenantID:          middleware.TenantIDFromContext(r.Context()),
			Code:              strings.ToLower(validators.SanitizeString(req.Code, 64)),
			Name:              validators.SanitizeString(req.Name, 255),
			Currency:          currency,
			IsDefault:         req.IsDefault,
			IsDefaultPurchase: req.IsDefaultPurchase,
		}

		created, err := svc.Create(r.Context(), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.PriceListFromModel(created))
	}
}

type priceListUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Currency *string `json:"currency,omitempty"`
}

func PriceListUpdate(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "priceListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req priceListUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if req.Name != nil {
			rec.Name = validators.SanitizeString(*req.Name, 255)
		}
		if req.Currency != nil {
			currency, err := enums.ParseCurrency(*req.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			rec.Currency = currency
		}

		updated, err := svc.Update(r.Context(), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.PriceListFromModel(updated))
	}
}

func PriceListGet(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "priceListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.PriceListFromModel(rec))
	}
}

func PriceListList(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]*catalog.PriceListDTO, 0, len(items))
		for _, item := range items {
			dtos = append(dtos, catalog.PriceListFromModel(item))
		}
		responses.WriteSuccess(w, dtos)
	}
}

type setDefaultRequest struct {
	Flag  string `json:"flag" validate:"required"`
	Value bool   `json:"value"`
}

func PriceListSetDefault(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "priceListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setDefaultRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.SetDefault(r.Context(), id, req.Flag, req.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.PriceListFromModel(rec))
	}
}

func PriceListDelete(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "priceListId")
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

// PriceListGetDefault looks up the scoped default. The flag query
// parameter selects the sale or purchase default and falls back to the
// sale flag when absent.
func PriceListGetDefault(svc *PriceListService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flag := strings.TrimSpace(r.URL.Query().Get("flag"))
		if flag == "" {
			flag = models.FlagDefault
		}

		rec, err := svc.GetDefault(r.Context(), flag, middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.PriceListFromModel(rec))
	}
}
