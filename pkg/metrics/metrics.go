// Package metrics exposes the kernel's internal Prometheus collectors
// (spec's ambient metrics concern): events appended, command latency,
// concentration Gini, and overdue law reviews. There is no HTTP
// exporter wired up here — Non-goals exclude a serving surface, so the
// registry exists purely for in-process introspection and tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the kernel's collectors. It is never the global
// default registerer, so embedding this module never collides with a
// host process's own Prometheus registry.
var Registry = prometheus.NewRegistry()

// Kernel bundles every collector the façade and tick engine update.
type Kernel struct {
	EventsAppended   *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	CommandErrors    *prometheus.CounterVec
	DelegationGini   prometheus.Gauge
	SupplierGini     prometheus.Gauge
	OverdueReviews   prometheus.Gauge
	ReflexEventTotal *prometheus.CounterVec
}

// New creates and registers a Kernel's collectors against reg.
func New(reg prometheus.Registerer) *Kernel {
	k := &Kernel{
		EventsAppended: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "governance_kernel",
				Name:      "events_appended_total",
				Help:      "Total number of events appended, by stream type.",
			},
			[]string{"stream_type"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "governance_kernel",
				Name:      "command_duration_seconds",
				Help:      "Command handling latency from dispatch to append.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"command"},
		),
		CommandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "governance_kernel",
				Name:      "command_errors_total",
				Help:      "Total number of commands rejected, by error code.",
			},
			[]string{"command", "code"},
		),
		DelegationGini: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "governance_kernel",
			Name:      "delegation_concentration_gini",
			Help:      "Most recently observed delegation in-degree Gini coefficient.",
		}),
		SupplierGini: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "governance_kernel",
			Name:      "supplier_concentration_gini",
			Help:      "Most recently observed supplier award Gini coefficient.",
		}),
		OverdueReviews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "governance_kernel",
			Name:      "overdue_law_reviews",
			Help:      "Number of active laws past their next checkpoint.",
		}),
		ReflexEventTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "governance_kernel",
				Name:      "reflex_events_total",
				Help:      "Total number of reflex events emitted by the tick engine, by type.",
			},
			[]string{"event_type"},
		),
	}

	reg.MustRegister(
		k.EventsAppended, k.CommandDuration, k.CommandErrors,
		k.DelegationGini, k.SupplierGini, k.OverdueReviews, k.ReflexEventTotal,
	)
	return k
}

// ObserveCommand records a command's outcome.
func (k *Kernel) ObserveCommand(command string, d time.Duration, errCode string) {
	k.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
	if errCode != "" {
		k.CommandErrors.WithLabelValues(command, errCode).Inc()
	}
}

// ObserveAppend records a successful append of n events to a stream type.
func (k *Kernel) ObserveAppend(streamType string, n int) {
	k.EventsAppended.WithLabelValues(streamType).Add(float64(n))
}

// ObserveReflexEvent records a single tick-engine reflex event.
func (k *Kernel) ObserveReflexEvent(eventType string) {
	k.ReflexEventTotal.WithLabelValues(eventType).Inc()
}
