package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the background workers.
// HTTP-level metrics live in the router middleware.
type Metrics struct {
	// Delinquency sweep metrics
	SweepsRun         prometheus.Counter
	SweepDuration     prometheus.Histogram
	AccountsOverdue   prometheus.Gauge
	EntriesOverdue    prometheus.Gauge
	AccountsDefaulted prometheus.Counter

	// Outbox publisher metrics
	OutboxEventsPublished prometheus.Counter
	OutboxPublishErrors   prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		SweepsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_delinquency_sweeps_total",
			Help: "Total number of delinquency sweeps executed",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_delinquency_sweep_duration_seconds",
			Help:    "Duration of delinquency sweep runs",
			Buckets: prometheus.DefBuckets,
		}),
		AccountsOverdue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loanledger_overdue_accounts",
			Help: "Number of overdue accounts observed by the last sweep",
		}),
		EntriesOverdue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loanledger_overdue_entries",
			Help: "Number of overdue schedule entries observed by the last sweep",
		}),
		AccountsDefaulted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_accounts_defaulted_total",
			Help: "Total number of accounts moved to defaulted by sweeps",
		}),

		OutboxEventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_outbox_events_published_total",
			Help: "Total number of outbox events published",
		}),
		OutboxPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_outbox_publish_errors_total",
			Help: "Total number of outbox publish failures",
		}),
	}
}
