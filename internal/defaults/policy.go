package defaults

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Defaultable is satisfied by catalogue models carrying default flags.
type Defaultable interface {
	TableName() string
	GetID() uuid.UUID
	TenantScopeID() *uuid.UUID
	DefaultFlags() map[string]bool
}

// Cleared identifies a record whose default designation was removed because
// another record took over the default within the same scope.
type Cleared struct {
	Table    string
	Flag     string
	RecordID uuid.UUID
	TenantID *uuid.UUID
}

// Policy enforces the at-most-one-default-per-scope invariant. One policy
// serves every defaultable entity type; the flag columns and scope come
// from the record itself.
type Policy struct {
	resolver Resolver
}

// NewPolicy builds the shared enforcement policy.
func NewPolicy(resolver Resolver) *Policy {
	return &Policy{resolver: resolver}
}

// Resolver exposes the scope resolver the policy was built with.
func (p *Policy) Resolver() Resolver {
	return p.resolver
}

// Apply clears competing defaults for every flag the candidate proposes as
// true. It runs inside the caller's transaction and must be invoked before
// the candidate row itself is persisted, so that a failed clear never
// leaves two records true. The candidate is excluded from the clearing
// query: re-saving an already-default record is a no-op.
func (p *Policy) Apply(ctx context.Context, tx *gorm.DB, rec Defaultable) ([]Cleared, error) {
	flags := rec.DefaultFlags()
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	scope := p.resolver.Resolve(rec.TenantScopeID())

	var cleared []Cleared
	for _, flag := range names {
		if !flags[flag] {
			continue
		}

		q := tx.WithContext(ctx).
			Table(rec.TableName()).
			Where(fmt.Sprintf("%s = ?", flag), true)
		if rec.GetID() != uuid.Nil {
			q = q.Where("id <> ?", rec.GetID())
		}
		q = scope.Constrain(q, p.resolver.Column())

		var ids []uuid.UUID
		if err := q.Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("finding conflicting %s defaults: %w", rec.TableName(), err)
		}
		if len(ids) == 0 {
			continue
		}

		res := tx.WithContext(ctx).
			Table(rec.TableName()).
			Where("id IN ?", ids).
			Update(flag, false)
		if res.Error != nil {
			return nil, fmt.Errorf("clearing %s.%s: %w", rec.TableName(), flag, res.Error)
		}

		for _, id := range ids {
			cleared = append(cleared, Cleared{
				Table:    rec.TableName(),
				Flag:     flag,
				RecordID: id,
				TenantID: rec.TenantScopeID(),
			})
		}
	}
	return cleared, nil
}

// CanDelete reports whether rec may be removed. Records currently holding
// any default designation are protected from deletion and force-deletion,
// regardless of caller permissions. Zero defaults per scope is a legal
// state, so deleting a non-default record is always allowed here.
func CanDelete(rec Defaultable) bool {
	for _, set := range rec.DefaultFlags() {
		if set {
			return false
		}
	}
	return true
}
