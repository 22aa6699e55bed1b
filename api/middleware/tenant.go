package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/api/responses"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
)

const tenantIDHeader = "X-Tenant-ID"

type tenantContextKey struct{}

// Tenant resolves the caller's tenant from the X-Tenant-ID header. The
// header is optional: requests without it operate on the unassigned
// partition (or the single global scope when tenancy is disabled). A
// malformed value is rejected outright rather than silently widened to
// the global scope.
func Tenant(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(tenantIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid tenant id header").
						WithDetails(map[string]any{"header": tenantIDHeader}))
				return
			}

			ctx := context.WithValue(r.Context(), tenantContextKey{}, id)
			if logg != nil {
				ctx = logg.WithTenantID(ctx, id.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantIDFromContext returns the tenant resolved by the Tenant
// middleware, or nil when the request carried no tenant header.
func TenantIDFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(tenantContextKey{}).(uuid.UUID); ok {
		return &id
	}
	return nil
}
