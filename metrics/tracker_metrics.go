package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// See the metrics initialization below for details.
const (
	// The POSIX process that emits metrics
	trackerProcess = "ticket_tracker"

	// HTTP API request metrics
	httpRequestsTotalMetricName          = "http_requests_total"
	httpRequestDurationSecondsMetricName = "http_request_duration_seconds"

	// Store size metrics
	storeSizeTotalMetricName = "store_size_total"

	// Snapshot flush metrics
	snapshotFlushesTotalMetricName         = "snapshot_flushes_total"
	snapshotFlushDurationSecondsMetricName = "snapshot_flush_duration_seconds"
)

// Store types used as the store_type label of storeSizeTotal.
const (
	StoreTypeUsers   = "users"
	StoreTypeTeams   = "teams"
	StoreTypeTickets = "tickets"
)

// Flush statuses used as the status label of snapshotFlushesTotal.
const (
	FlushStatusSuccess = "success"
	FlushStatusError   = "error"
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDurationSeconds)
	prometheus.MustRegister(storeSizeTotal)
	prometheus.MustRegister(snapshotFlushesTotal)
	prometheus.MustRegister(snapshotFlushDurationSeconds)
}

var (
	// httpRequestsTotal tracks all HTTP API requests served.
	// Increment on each request with labels:
	//   - route: the registered route pattern, e.g. "GET /api/tickets/{id}"
	//   - code: the HTTP status code written
	//
	// Usage:
	// - Monitor request load per route
	// - Track 4xx/5xx rates
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: trackerProcess,
			Name:      httpRequestsTotalMetricName,
			Help:      "Total HTTP API requests served, labeled by route and status code.",
		},
		[]string{"route", "code"},
	)

	// httpRequestDurationSeconds measures HTTP API request processing duration.
	// Every request is answered from memory, so buckets stay in the sub-10ms range.
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: trackerProcess,
			Name:      httpRequestDurationSecondsMetricName,
			Help:      "Histogram of HTTP API request processing time in seconds",
			Buckets: []float64{
				0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05,
			},
		},
		[]string{"route"},
	)

	// storeSizeTotal tracks the current size of each in-memory collection.
	// Set as gauge with labels:
	//   - store_type: "users", "teams", "tickets"
	storeSizeTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: trackerProcess,
			Name:      storeSizeTotalMetricName,
			Help:      "Current size of in-memory collections by type.",
		},
		[]string{"store_type"},
	)

	// snapshotFlushesTotal tracks snapshot flushes on shutdown.
	// Increment once per flush with labels:
	//   - status: "success", "error"
	//
	// Usage:
	// - Alert on failed flushes, which lose all state since startup
	snapshotFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: trackerProcess,
			Name:      snapshotFlushesTotalMetricName,
			Help:      "Total snapshot flushes, labeled by status.",
		},
		[]string{"status"},
	)

	// snapshotFlushDurationSeconds measures how long writing the snapshot takes.
	snapshotFlushDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Subsystem: trackerProcess,
			Name:      snapshotFlushDurationSecondsMetricName,
			Help:      "Histogram of snapshot flush time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
)

// RecordHTTPRequest records a served HTTP API request.
func RecordHTTPRequest(
	route string,
	code int,
	duration float64,
) {
	httpRequestsTotal.With(prometheus.Labels{
		"route": route,
		"code":  strconv.Itoa(code),
	}).Inc()

	httpRequestDurationSeconds.With(prometheus.Labels{
		"route": route,
	}).Observe(duration)
}

// UpdateStoreSize updates the current size of a collection.
func UpdateStoreSize(
	storeType string,
	size float64,
) {
	storeSizeTotal.With(prometheus.Labels{
		"store_type": storeType,
	}).Set(size)
}

// RecordSnapshotFlush records a snapshot flush and its duration.
func RecordSnapshotFlush(
	status string,
	duration float64,
) {
	snapshotFlushesTotal.With(prometheus.Labels{
		"status": status,
	}).Inc()

	snapshotFlushDurationSeconds.Observe(duration)
}
