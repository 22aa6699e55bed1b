package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDefaultsMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDefaultsMetrics(reg)

	m.IncReassigned("price_lists", "is_default")
	m.IncReassigned("price_lists", "is_default")
	m.IncViolation("price_period_uniqueness")

	if got := testutil.ToFloat64(m.reassigned.WithLabelValues("price_lists", "is_default")); got != 2 {
		t.Fatalf("expected 2 reassignments, got %v", got)
	}
	if got := testutil.ToFloat64(m.violations.WithLabelValues("price_period_uniqueness")); got != 1 {
		t.Fatalf("expected 1 violation, got %v", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewDefaultsMetrics(nil)
	m.IncReassigned("", "")
	m.IncViolation("")
}
