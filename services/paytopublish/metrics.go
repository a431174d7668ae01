package paytopublish

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opGrant  = "grant"
	opRevoke = "revoke"

	outcomeApplied            = "applied"
	outcomeUnchanged          = "unchanged"
	outcomeTargetNotFound     = "target_not_found"
	outcomeConfigurationError = "configuration_error"
	outcomePersistFailure     = "persist_failure"
)

type Metrics struct {
	Operations       *prometheus.CounterVec
	AmbiguousTargets prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "paytopublish_license_operations_total",
				Help: "Pay to publish grant and revoke operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		AmbiguousTargets: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "paytopublish_ambiguous_targets_total",
				Help: "Licenses referenced by more than one order item",
			},
		),
	}
}

func (m *Metrics) observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ambiguous() {
	if m == nil {
		return
	}
	m.AmbiguousTargets.Inc()
}
