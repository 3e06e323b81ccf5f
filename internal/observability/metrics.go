// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScansTotal         *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	OpportunitiesFound *prometheus.CounterVec
	ActionableFound    prometheus.Counter

	// Oracle metrics
	OracleCalls   *prometheus.CounterVec
	OracleLatency prometheus.Histogram

	// Ledger metrics
	LedgerSubmissions *prometheus.CounterVec

	// Bridge metrics
	BridgedEntries *prometheus.CounterVec

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bountyledger"
	}

	return &Metrics{
		// Scan metrics
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of scan runs by status",
		}, []string{"status"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Full scan duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		OpportunitiesFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "opportunities_found_total",
			Help:      "Total number of opportunities found by platform",
		}, []string{"platform"}),
		ActionableFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "actionable_found_total",
			Help:      "Total number of opportunities scored actionable",
		}),

		// Oracle metrics
		OracleCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of oracle consultations by outcome",
		}, []string{"oracle", "outcome"}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "latency_seconds",
			Help:      "Oracle consultation latency in seconds",
			Buckets:   []float64{1, 5, 10, 20, 30, 45, 60, 90},
		}),

		// Ledger metrics
		LedgerSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "submissions_total",
			Help:      "Total number of ledger submissions by method and status",
		}, []string{"method", "status"}),

		// Bridge metrics
		BridgedEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "entries_total",
			Help:      "Total number of bridged activity records by kind",
		}, []string{"kind"}),

		// Health metrics
		LastSuccessfulScan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScanRun records one completed scan run.
func RecordScanRun(status string, durationSeconds float64) {
	DefaultMetrics.ScansTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanDuration.Observe(durationSeconds)
}

// RecordOpportunities adds to the per-platform discovery counter.
func RecordOpportunities(platform string, count int) {
	DefaultMetrics.OpportunitiesFound.WithLabelValues(platform).Add(float64(count))
}

// RecordActionable adds to the actionable counter.
func RecordActionable(count int) {
	DefaultMetrics.ActionableFound.Add(float64(count))
}

// RecordOracleCall records one oracle consultation.
func RecordOracleCall(oracle string, judged bool, seconds float64) {
	outcome := "judgment"
	if !judged {
		outcome = "none"
	}
	DefaultMetrics.OracleCalls.WithLabelValues(oracle, outcome).Inc()
	DefaultMetrics.OracleLatency.Observe(seconds)
}

// RecordLedgerSubmission records one recorder call.
func RecordLedgerSubmission(method string, confirmed bool) {
	status := "confirmed"
	if !confirmed {
		status = "not_recorded"
	}
	DefaultMetrics.LedgerSubmissions.WithLabelValues(method, status).Inc()
}

// RecordBridged adds to the bridged-entries counter.
func RecordBridged(kind string, count int) {
	DefaultMetrics.BridgedEntries.WithLabelValues(kind).Add(float64(count))
}

// MarkScanSuccess updates the last-successful-scan gauge.
func MarkScanSuccess() {
	DefaultMetrics.LastSuccessfulScan.SetToCurrentTime()
}

// AddUptime accumulates process uptime.
func AddUptime(seconds float64) {
	DefaultMetrics.UptimeSeconds.Add(seconds)
}
