package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultsMetrics records invariant-engine activity.
type DefaultsMetrics struct {
	reassigned *prometheus.CounterVec
	violations *prometheus.CounterVec
}

// NewDefaultsMetrics registers the defaults metrics on the provided registerer.
func NewDefaultsMetrics(reg prometheus.Registerer) *DefaultsMetrics {
	if reg == nil {
		return &DefaultsMetrics{}
	}
	reassigned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_default_reassigned_total",
		Help: "Default flags cleared because another record took over the default.",
	}, []string{"entity", "flag"})
	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_constraint_violations_total",
		Help: "Rejected writes per invariant kind.",
	}, []string{"kind"})
	reg.MustRegister(reassigned, violations)
	return &DefaultsMetrics{
		reassigned: reassigned,
		violations: violations,
	}
}

// IncReassigned counts one cleared default for the entity/flag pair.
func (m *DefaultsMetrics) IncReassigned(entity, flag string) {
	if m == nil || m.reassigned == nil {
		return
	}
	m.reassigned.WithLabelValues(normalizeLabel(entity), normalizeLabel(flag)).Inc()
}

// IncViolation counts one rejected write for the named invariant.
func (m *DefaultsMetrics) IncViolation(kind string) {
	if m == nil || m.violations == nil {
		return
	}
	m.violations.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
