package product

import (
	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the catalogue
// browse endpoint.
type ProductListFilters struct {
	TypeID     *uuid.UUID `json:"type_id,omitempty"`
	StatusID   *uuid.UUID `json:"status_id,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	GroupID    *uuid.UUID `json:"group_id,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
	Tag        string     `json:"tag,omitempty"`
	Query      string     `json:"q,omitempty"`

	// SellableOnly keeps only products whose status allows selling.
	SellableOnly bool `json:"sellable,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate and filter the
// products of one tenant scope.
type ListProductsInput struct {
	TenantID *uuid.UUID
	Filters  ProductListFilters
	Limit    int
	Cursor   *pagination.Cursor
}

// ProductListResult wraps one page of products and the next-page cursor.
type ProductListResult struct {
	Items  []ProductDTO `json:"items"`
	Cursor string       `json:"cursor"`
}
