package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/api/middleware"
	"github.com/mercatura/catalog-backend/api/responses"
	"github.com/mercatura/catalog-backend/api/validators"
	product "github.com/mercatura/catalog-backend/internal/products"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
)

type productCreateRequest struct {
	SKU           string     `json:"sku" validate:"required,min=1,max=64"`
	Name          string     `json:"name" validate:"required,min=1,max=255"`
	Description   *string    `json:"description,omitempty"`
	TypeID        *uuid.UUID `json:"type_id,omitempty"`
	StatusID      *uuid.UUID `json:"status_id,omitempty"`
	TaxClassID    *uuid.UUID `json:"tax_class_id,omitempty"`
	MeasureUnitID *uuid.UUID `json:"measure_unit_id,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	GroupID       *uuid.UUID `json:"group_id,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			TenantID:      middleware.TenantIDFromContext(r.Context()),
			SKU:           req.SKU,
			Name:          validators.SanitizeString(req.Name, 255),
			Description:   req.Description,
			TypeID:        req.TypeID,
			StatusID:      req.StatusID,
			TaxClassID:    req.TaxClassID,
			MeasureUnitID: req.MeasureUnitID,
			CategoryID:    req.CategoryID,
			GroupID:       req.GroupID,
			Tags:          req.Tags,
			IsActive:      req.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type productUpdateRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description   *string    `json:"description,omitempty"`
	TypeID        *uuid.UUID `json:"type_id,omitempty"`
	StatusID      *uuid.UUID `json:"status_id,omitempty"`
	TaxClassID    *uuid.UUID `json:"tax_class_id,omitempty"`
	MeasureUnitID *uuid.UUID `json:"measure_unit_id,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	GroupID       *uuid.UUID `json:"group_id,omitempty"`
	Tags          *[]string  `json:"tags,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req productUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), id, product.UpdateProductInput{
			Name:          req.Name,
			Description:   req.Description,
			TypeID:        req.TypeID,
			StatusID:      req.StatusID,
			TaxClassID:    req.TaxClassID,
			MeasureUnitID: req.MeasureUnitID,
			CategoryID:    req.CategoryID,
			GroupID:       req.GroupID,
			Tags:          req.Tags,
			IsActive:      req.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(),
			middleware.TenantIDFromContext(r.Context()),
			filters, limit, r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseProductFilters(r *http.Request) (product.ProductListFilters, error) {
	q := r.URL.Query()
	filters := product.ProductListFilters{
		Tag:   strings.TrimSpace(q.Get("tag")),
		Query: strings.TrimSpace(q.Get("q")),
	}

	for key, dest := range map[string]**uuid.UUID{
		"type_id":     &filters.TypeID,
		"status_id":   &filters.StatusID,
		"category_id": &filters.CategoryID,
		"group_id":    &filters.GroupID,
	} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter value").
				WithDetails(map[string]any{"field": key})
		}
		*dest = &id
	}

	if raw := strings.TrimSpace(q.Get("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter value").
				WithDetails(map[string]any{"field": "is_active"})
		}
		filters.IsActive = &active
	}

	if raw := strings.TrimSpace(q.Get("sellable")); raw != "" {
		sellable, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter value").
				WithDetails(map[string]any{"field": "sellable"})
		}
		filters.SellableOnly = sellable
	}

	return filters, nil
}
