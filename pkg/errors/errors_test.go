package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "db: insert price list")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeNotFound, "price list not found")
	outer := fmt.Errorf("loading: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 fallback, got %d", meta.HTTPStatus)
	}
}

func TestConstraintViolationRoundTrip(t *testing.T) {
	tenantID := uuid.New()
	err := NewConstraintViolation("duplicate valid_from", ConstraintViolation{
		Fields:   []string{"valid_from"},
		TenantID: &tenantID,
		Reason:   "a price row for this product and price list already starts on this date",
	})

	v, ok := Violation(err)
	if !ok {
		t.Fatal("expected violation details")
	}
	if len(v.Fields) != 1 || v.Fields[0] != "valid_from" {
		t.Fatalf("unexpected fields: %v", v.Fields)
	}
	if v.TenantID == nil || *v.TenantID != tenantID {
		t.Fatal("tenant context lost")
	}
	if err.Code() != CodeConflict {
		t.Fatalf("expected CONFLICT, got %s", err.Code())
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("root"), "outer")
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected code in dump, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
