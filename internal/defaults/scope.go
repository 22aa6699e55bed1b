package defaults

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/pkg/config"
)

// Scope is the partition within which default flags are unique: one tenant,
// the nil-tenant partition, or the single global partition when tenancy is
// disabled.
type Scope struct {
	global   bool
	tenantID *uuid.UUID
}

// GlobalScope is the partition shared by every record when tenancy is off.
func GlobalScope() Scope {
	return Scope{global: true}
}

// TenantScope partitions by the given tenant id. A nil id is its own
// partition; it is never merged with any tenant.
func TenantScope(tenantID *uuid.UUID) Scope {
	return Scope{tenantID: tenantID}
}

// IsGlobal reports whether this is the single tenancy-disabled partition.
func (s Scope) IsGlobal() bool {
	return s.global
}

// TenantID returns the tenant the scope is bound to, nil for the global and
// nil-tenant partitions.
func (s Scope) TenantID() *uuid.UUID {
	return s.tenantID
}

// Key renders a stable string form used for cache keys and error context.
func (s Scope) Key() string {
	if s.global {
		return "global"
	}
	if s.tenantID == nil {
		return "unassigned"
	}
	return s.tenantID.String()
}

// Constrain narrows a query to the scope's partition. The global scope adds
// no predicate at all.
func (s Scope) Constrain(qb *gorm.DB, column string) *gorm.DB {
	if s.global {
		return qb
	}
	if s.tenantID == nil {
		return qb.Where(column + " IS NULL")
	}
	return qb.Where(column+" = ?", *s.tenantID)
}

// Resolver computes scopes from the startup tenancy configuration. It is a
// pure value: no ambient state, no error conditions.
type Resolver struct {
	enabled bool
	column  string
}

// NewResolver builds a resolver from configuration.
func NewResolver(cfg config.TenancyConfig) Resolver {
	column := cfg.TenantForeignKey
	if column == "" {
		column = "tenant_id"
	}
	return Resolver{enabled: cfg.Enabled, column: column}
}

// Resolve maps a record's tenant reference to its scope.
func (r Resolver) Resolve(tenantID *uuid.UUID) Scope {
	if !r.enabled {
		return GlobalScope()
	}
	return TenantScope(tenantID)
}

// Enabled reports whether tenancy is configured.
func (r Resolver) Enabled() bool {
	return r.enabled
}

// Column returns the tenant foreign key column name.
func (r Resolver) Column() string {
	return r.column
}
