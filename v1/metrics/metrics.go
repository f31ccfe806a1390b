package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AcquireCounter tracks the number of acquisition attempts.
	AcquireCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quorum_acquire_total",
		Help: "Total number of lock acquisition attempts",
	})
	// AcquireFailureCounter tracks failed acquisition attempts.
	AcquireFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quorum_acquire_failures_total",
		Help: "Total number of failed lock acquisition attempts",
	})
	// RenewCounter tracks the number of renewal attempts.
	RenewCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quorum_renew_total",
		Help: "Total number of lock renewal attempts",
	})
	// ReleaseCounter tracks the number of releases.
	ReleaseCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quorum_release_total",
		Help: "Total number of lock releases",
	})
	// NodeFailureCounter tracks per-node calls absorbed as failed votes.
	NodeFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quorum_node_failures_total",
		Help: "Total number of node calls counted as failed votes",
	})
	// AcquireLatency observes end-to-end acquisition latency.
	AcquireLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quorum_acquire_latency_seconds",
		Help:    "Latency of lock acquisition attempts",
		Buckets: prometheus.DefBuckets,
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterLockMetrics registers quorum lock metrics on the provided registry.
func RegisterLockMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		AcquireCounter,
		AcquireFailureCounter,
		RenewCounter,
		ReleaseCounter,
		NodeFailureCounter,
		AcquireLatency,
	)
}
