package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mercatura/catalog-backend/api/middleware"
	"github.com/mercatura/catalog-backend/api/responses"
	"github.com/mercatura/catalog-backend/api/validators"
	"github.com/mercatura/catalog-backend/internal/catalog"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
)

// Concrete service instantiations for the classification entities.
type (
	ProductTypeService   = catalog.Service[models.ProductType, *models.ProductType]
	ProductStatusService = catalog.Service[models.ProductStatus, *models.ProductStatus]
	TaxClassService      = catalog.Service[models.TaxClass, *models.TaxClass]
	MeasureUnitService   = catalog.Service[models.MeasureUnit, *models.MeasureUnit]
)

// ClassificationGet serves GET by id for any defaultable classification.
func ClassificationGet[M any, T catalog.Model[M]](svc *catalog.Service[M, T], logg *logger.Logger, param string, toDTO func(T) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toDTO(rec))
	}
}

// ClassificationList serves the scoped listing for any classification.
func ClassificationList[M any, T catalog.Model[M]](svc *catalog.Service[M, T], logg *logger.Logger, toDTO func(T) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]any, 0, len(items))
		for _, item := range items {
			dtos = append(dtos, toDTO(item))
		}
		responses.WriteSuccess(w, dtos)
	}
}

// ClassificationSetDefault toggles a default flag on one record.
func ClassificationSetDefault[M any, T catalog.Model[M]](svc *catalog.Service[M, T], logg *logger.Logger, param string, toDTO func(T) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, param)
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

		responses.WriteSuccess(w, toDTO(rec))
	}
}

// ClassificationDelete removes a record unless it still carries a default flag.
func ClassificationDelete[M any, T catalog.Model[M]](svc *catalog.Service[M, T], logg *logger.Logger, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, param)
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

// ClassificationGetDefault resolves the scoped default record.
func ClassificationGetDefault[M any, T catalog.Model[M]](svc *catalog.Service[M, T], logg *logger.Logger, toDTO func(T) any) http.HandlerFunc {
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

		responses.WriteSuccess(w, toDTO(rec))
	}
}

type productTypeCreateRequest struct {
	Code      string `json:"code" validate:"required,min=1,max=64"`
	Name      string `json:"name" validate:"required,min=1,max=255"`
	IsDefault bool   `json:"is_default"`
}

func ProductTypeCreate(svc *ProductTypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productTypeCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), &models.ProductType{
			TenantID:  middleware.TenantIDFromContext(r.Context()),
			Code:      strings.ToLower(validators.SanitizeString(req.Code, 64)),
			Name:      validators.SanitizeString(req.Name, 255),
			IsDefault: req.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.ProductTypeFromModel(created))
	}
}

type productTypeUpdateRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
}

func ProductTypeUpdate(svc *ProductTypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "typeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req productTypeUpdateRequest
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

		updated, err := svc.Update(r.Context(), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.ProductTypeFromModel(updated))
	}
}

type productStatusCreateRequest struct {
	Code       string `json:"code" validate:"required,min=1,max=64"`
	Name       string `json:"name" validate:"required,min=1,max=255"`
	AllowsSale *bool  `json:"allows_sale,omitempty"`
	IsDefault  bool   `json:"is_default"`
}

func ProductStatusCreate(svc *ProductStatusService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productStatusCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allowsSale := true
		if req.AllowsSale != nil {
			allowsSale = *req.AllowsSale
		}

		created, err := svc.Create(r.Context(), &models.ProductStatus{
			TenantID:   middleware.TenantIDFromContext(r.Context()),
			Code:       strings.ToLower(validators.SanitizeString(req.Code, 64)),
			Name:       validators.SanitizeString(req.Name, 255),
			AllowsSale: allowsSale,
			IsDefault:  req.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.ProductStatusFromModel(created))
	}
}

type productStatusUpdateRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	AllowsSale *bool   `json:"allows_sale,omitempty"`
}

func ProductStatusUpdate(svc *ProductStatusService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "statusId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req productStatusUpdateRequest
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
		if req.AllowsSale != nil {
			rec.AllowsSale = *req.AllowsSale
		}

		updated, err := svc.Update(r.Context(), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.ProductStatusFromModel(updated))
	}
}

type taxClassCreateRequest struct {
	Code      string `json:"code" validate:"required,min=1,max=64"`
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Rate      string `json:"rate" validate:"required"`
	IsDefault bool   `json:"is_default"`
}

func TaxClassCreate(svc *TaxClassService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req taxClassCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := parseTaxRate(req.Rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), &models.TaxClass{
			TenantID:  middleware.TenantIDFromContext(r.Context()),
			Code:      strings.ToLower(validators.SanitizeString(req.Code, 64)),
			Name:      validators.SanitizeString(req.Name, 255),
			Rate:      rate,
			IsDefault: req.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.TaxClassFromModel(created))
	}
}

type taxClassUpdateRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Rate *string `json:"rate,omitempty"`
}

func TaxClassUpdate(svc *TaxClassService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "taxClassId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req taxClassUpdateRequest
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
		if req.Rate != nil {
			rate, err := parseTaxRate(*req.Rate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rec.Rate = rate
		}

		updated, err := svc.Update(r.Context(), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.TaxClassFromModel(updated))
	}
}

type measureUnitCreateRequest struct {
	Code      string `json:"code" validate:"required,min=1,max=64"`
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Symbol    string `json:"symbol" validate:"required,min=1,max=16"`
	IsDefault bool   `json:"is_default"`
}

func MeasureUnitCreate(svc *MeasureUnitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req measureUnitCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), &models.MeasureUnit{
			TenantID:  middleware.TenantIDFromContext(r.Context()),
			Code:      strings.ToLower(validators.SanitizeString(req.Code, 64)),
			Name:      validators.SanitizeString(req.Name, 255),
			Symbol:    validators.SanitizeString(req.Symbol, 16),
			IsDefault: req.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.MeasureUnitFromModel(created))
	}
}

type measureUnitUpdateRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Symbol *string `json:"symbol,omitempty" validate:"omitempty,min=1,max=16"`
}

func MeasureUnitUpdate(svc *MeasureUnitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req measureUnitUpdateRequest
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
		if req.Symbol != nil {
			rec.Symbol = validators.SanitizeString(*req.Symbol, 16)
		}

		updated, err := svc.Update(r.Context(), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.MeasureUnitFromModel(updated))
	}
}

// parseTaxRate accepts a decimal percentage between 0 and 100.
func parseTaxRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax rate")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be between 0 and 100")
	}
	return rate, nil
}
