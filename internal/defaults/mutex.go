package defaults

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
)

// FlagPair names two default flags that may never both be true on the same
// record at once.
type FlagPair struct {
	A string
	B string
}

// FlagState is one tenant sub-state of a submitted form. A single
// submission may edit several tenants' flag sets at once; each sub-state is
// validated independently so a violation in one tenant's block does not
// mask the others.
type FlagState struct {
	TenantID *uuid.UUID
	Values   map[string]bool
}

// Validate rejects any sub-state proposing both flags as true. All
// violations are aggregated; each carries the tenant context it belongs to
// so the caller can attach the message at the right place. This runs
// before any defaults are cleared, so an invalid combination never reaches
// the enforcer.
func (pair FlagPair) Validate(states ...FlagState) error {
	var errs []error
	for _, state := range states {
		if state.Values[pair.A] && state.Values[pair.B] {
			errs = append(errs, pkgerrors.NewFieldValidation(
				fmt.Sprintf("%s and %s are mutually exclusive", pair.A, pair.B),
				pkgerrors.ConstraintViolation{
					Fields:   []string{pair.A, pair.B},
					TenantID: state.TenantID,
					Reason:   "a record cannot be both defaults at once",
				},
			))
		}
	}
	return multierr.Combine(errs...)
}
