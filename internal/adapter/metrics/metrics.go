package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServiceMetrics holds all Prometheus metrics for the flag service.
type ServiceMetrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	AdmissionTotal     *prometheus.CounterVec
	FlagMutationsTotal *prometheus.CounterVec
	EventsIngested     prometheus.Counter
	NotModifiedTotal   prometheus.Counter
}

// NewServiceMetrics initializes and registers the Prometheus metrics.
func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagpost",
			Subsystem: "evaluate",
			Name:      "requests_total",
			Help:      "Total number of evaluation requests by outcome.",
		}, []string{"outcome"}), // outcome: evaluated, not_found, rate_limited, error
		AdmissionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagpost",
			Subsystem: "admission",
			Name:      "checks_total",
			Help:      "Total number of admission checks by result.",
		}, []string{"result"}), // result: allowed, denied, fail_open
		FlagMutationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagpost",
			Subsystem: "flags",
			Name:      "mutations_total",
			Help:      "Total number of flag mutations by operation.",
		}, []string{"op"}), // op: create, patch
		EventsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "flagpost",
			Subsystem: "events",
			Name:      "ingested_total",
			Help:      "Total number of audit events accepted for ingestion.",
		}),
		NotModifiedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "flagpost",
			Subsystem: "flags",
			Name:      "not_modified_total",
			Help:      "Total number of conditional reads answered without a body.",
		}),
	}
}
