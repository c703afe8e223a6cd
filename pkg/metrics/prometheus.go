package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	EventsPublished   *prometheus.CounterVec
	CreditsIssued     prometheus.Counter
	CreditsWithdrawn  prometheus.Counter
	PayoutFailures    prometheus.Counter
}

// NewMetrics creates new prometheus metrics registered with reg.
// A nil reg registers with the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "The total number of ledger operations by outcome",
		}, []string{"operation", "result"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time taken to execute ledger operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "The total number of ledger events handed to publishers",
		}, []string{"type"}),
		CreditsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_issued_total",
			Help:      "The total value credited to passengers",
		}),
		CreditsWithdrawn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_withdrawn_total",
			Help:      "The total value paid out to passengers",
		}),
		PayoutFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_failures_total",
			Help:      "The total number of failed payout transfers",
		}),
	}
}
