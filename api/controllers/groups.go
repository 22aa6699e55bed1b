package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/api/middleware"
	"github.com/mercatura/catalog-backend/api/responses"
	"github.com/mercatura/catalog-backend/api/validators"
	"github.com/mercatura/catalog-backend/internal/catalog"
	"github.com/mercatura/catalog-backend/pkg/logger"
)

type categoryCreateRequest struct {
	Code     string     `json:"code" validate:"required,min=1,max=64"`
	Name     string     `json:"name" validate:"required,min=1,max=255"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Position int        `json:"position" validate:"min=0"`
}

func CategoryCreate(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateCategory(r.Context(), catalog.CreateCategoryInput{
			TenantID: middleware.TenantIDFromContext(r.Context()),
			Code:     req.Code,
			Name:     validators.SanitizeString(req.Name, 255),
			ParentID: req.ParentID,
			Position: req.Position,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type categoryMoveRequest struct {
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Position int        `json:"position" validate:"min=0"`
}

func CategoryMove(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req categoryMoveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.MoveCategory(r.Context(), id, req.ParentID, req.Position)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func CategoryList(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListCategories(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

func CategoryDelete(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

type productGroupCreateRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
	Name string `json:"name" validate:"required,min=1,max=255"`
}

func ProductGroupCreate(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productGroupCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateProductGroup(r.Context(), catalog.CreateProductGroupInput{
			TenantID: middleware.TenantIDFromContext(r.Context()),
			Code:     req.Code,
			Name:     validators.SanitizeString(req.Name, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductGroupList(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListProductGroups(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

func ProductGroupDelete(svc *catalog.GroupingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProductGroup(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
