package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the proxy.
// It is passed explicitly to the components that record into it; every
// component accepts a nil *Metrics and then records nothing.
type Metrics struct {
	// Upstream RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Filter Metrics
	blocksFilteredTotal         *prometheus.CounterVec
	transactionsConsideredTotal prometheus.Counter
	transactionsRetainedTotal   prometheus.Counter
	filterDuration              prometheus.Histogram
	errorsTotal                 *prometheus.CounterVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of upstream Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of upstream Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"method", "endpoint"},
		),

		blocksFilteredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "getblock_blocks_filtered_total",
				Help: "Total number of getBlock responses run through the transfer filter",
			},
			[]string{"status"},
		),
		transactionsConsideredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "getblock_transactions_considered_total",
				Help: "Total number of transactions inspected by the transfer filter",
			},
		),
		transactionsRetainedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "getblock_transactions_retained_total",
				Help: "Total number of transactions kept because they moved a balance",
			},
		),
		filterDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "getblock_filter_duration_seconds",
				Help:    "Time spent filtering a single block in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "getblock_errors_total",
				Help: "Total number of failed getBlock requests by error kind",
			},
			[]string{"kind"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// RecordRPCCall records an upstream RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordFilter records one successful filter pass.
func (m *Metrics) RecordFilter(total, retained int, duration float64) {
	m.blocksFilteredTotal.WithLabelValues("success").Inc()
	m.transactionsConsideredTotal.Add(float64(total))
	m.transactionsRetainedTotal.Add(float64(retained))
	m.filterDuration.Observe(duration)
}

// RecordError records a failed request under its error kind.
func (m *Metrics) RecordError(kind string) {
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFilterError records a filter pass that rejected the block.
func (m *Metrics) RecordFilterError() {
	m.blocksFilteredTotal.WithLabelValues("error").Inc()
}

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
