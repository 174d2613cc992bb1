// Package metrics exposes the Prometheus registry and the counters the
// registration platform reports on.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tefa"

// Registry is the registry all server metrics register against.
var Registry = prometheus.NewRegistry()

// AppInfo exposes version information as labels, always set to 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always 1, details in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// RegistrationsTotal counts admitted registrations by initial status.
var RegistrationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registrations admitted, by initial order status",
	},
	[]string{"status"},
)

// RegistrationRejections counts rejected registration attempts by reason.
var RegistrationRejections = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_rejections_total",
		Help:      "Total number of rejected registration attempts, by reason",
	},
	[]string{"reason"},
)

// CounterDriftEvents reports how many events had a drifted participant
// counter at the last reconciliation run.
var CounterDriftEvents = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "participant_counter_drift_events",
		Help:      "Events with a participant counter that disagrees with the order ledger",
	},
)

// CountersRepaired counts events whose counters were reset by repair.
var CountersRepaired = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "participant_counters_repaired_total",
		Help:      "Total number of participant counters reset by reconciliation repair",
	},
)

// PushTokensDeactivated counts tokens swept by the idle-token cleanup job.
var PushTokensDeactivated = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_tokens_deactivated_total",
		Help:      "Total number of push tokens deactivated by the cleanup job",
	},
)

// Init sets the static application info metric.
func Init(version, commit, buildDate string) {
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
