package defaults

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
)

var priceListFlags = FlagPair{A: "is_default", B: "is_default_purchase"}

func TestFlagPairValidateAcceptsSingleFlag(t *testing.T) {
	tenant := uuid.New()

	err := priceListFlags.Validate(
		FlagState{TenantID: &tenant, Values: map[string]bool{"is_default": true}},
		FlagState{TenantID: nil, Values: map[string]bool{"is_default_purchase": true}},
		FlagState{TenantID: &tenant, Values: map[string]bool{}},
	)
	if err != nil {
		t.Fatalf("single flags must pass, got %v", err)
	}
}

func TestFlagPairValidateRejectsBothTrue(t *testing.T) {
	tenant := uuid.New()

	err := priceListFlags.Validate(FlagState{
		TenantID: &tenant,
		Values:   map[string]bool{"is_default": true, "is_default_purchase": true},
	})
	if err == nil {
		t.Fatal("both flags true must be rejected")
	}

	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
	violation, ok := pkgerrors.Violation(err)
	if !ok {
		t.Fatal("violation details missing")
	}
	if violation.TenantID == nil || *violation.TenantID != tenant {
		t.Fatalf("violation bound to wrong tenant: %v", violation.TenantID)
	}
	if len(violation.Fields) != 2 {
		t.Fatalf("violation fields = %v", violation.Fields)
	}
}

func TestFlagPairValidateAggregatesPerTenant(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()

	err := priceListFlags.Validate(
		FlagState{TenantID: &tenantA, Values: map[string]bool{"is_default": true, "is_default_purchase": true}},
		FlagState{TenantID: &tenantB, Values: map[string]bool{"is_default": true}},
		FlagState{TenantID: nil, Values: map[string]bool{"is_default": true, "is_default_purchase": true}},
	)
	if err == nil {
		t.Fatal("expected aggregated violations")
	}

	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(errs), err)
	}

	seenNil := false
	seenA := false
	for _, e := range errs {
		violation, ok := pkgerrors.Violation(e)
		if !ok {
			t.Fatalf("violation details missing on %v", e)
		}
		switch {
		case violation.TenantID == nil:
			seenNil = true
		case *violation.TenantID == tenantA:
			seenA = true
		default:
			t.Fatalf("unexpected tenant in violation: %v", violation.TenantID)
		}
	}
	if !seenA || !seenNil {
		t.Fatal("violations must name the offending sub-states")
	}
}
