package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide Prometheus metric container.
type Metrics struct {
	// Solve operations
	SolveRequestsTotal *prometheus.CounterVec
	SolveDuration      *prometheus.HistogramVec
	SolveInFlight      prometheus.Gauge
	RouteWeight        *prometheus.GaugeVec
	RouteHops          *prometheus.HistogramVec

	// Solver internals
	HeapOperations     *prometheus.HistogramVec
	VisitedNodes       *prometheus.HistogramVec
	PivotsFound        prometheus.Histogram
	BarrierCount       prometheus.Histogram
	FrontierReductions prometheus.Histogram

	// Graph size
	GraphNodesTotal *prometheus.HistogramVec
	GraphEdgesTotal *prometheus.HistogramVec

	// Cache and rate limiting
	CacheHitsTotal      *prometheus.CounterVec
	RateLimitRejections prometheus.Counter

	// Runtime
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics builds and registers the metric set under the given
// namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		SolveRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_requests_total",
				Help:      "Total number of route solve requests",
			},
			[]string{"algorithm", "status"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of route solve operations",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"algorithm"},
		),

		SolveInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_in_flight",
				Help:      "Current number of solve operations being processed",
			},
		),

		RouteWeight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_weight",
				Help:      "Last computed route total weight",
			},
			[]string{"algorithm"},
		),

		RouteHops: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_hops",
				Help:      "Number of hops in a solved route",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
			},
			[]string{"algorithm"},
		),

		HeapOperations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "heap_operations",
				Help:      "Priority queue mutations performed during a solve",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"algorithm"},
		),

		VisitedNodes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "visited_nodes",
				Help:      "Number of vertices completed during a solve",
				Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"algorithm"},
		),

		PivotsFound: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "psb_pivots_found",
				Help:      "Number of pivots selected across FindPivots calls",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),

		BarrierCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "psb_barrier_count",
				Help:      "Number of BMSSP recursive invocations in a solve",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),

		FrontierReductions: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "psb_frontier_reductions",
				Help:      "Number of times FindPivots bailed out early on a large frontier",
				Buckets:   []float64{0, 1, 2, 5, 10},
			},
		),

		GraphNodesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of vertices in solved graphs",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"operation"},
		),

		GraphEdgesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in solved graphs",
				Buckets:   []float64{20, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Route result cache lookups by outcome",
			},
			[]string{"outcome"}, // hit, miss
		),

		RateLimitRejections: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rate_limit_rejections_total",
				Help:      "Total number of solve requests rejected by the rate limiter",
			},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the process-wide metrics, initializing a default set if
// InitMetrics hasn't been called yet.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("tokenroute", "")
	}
	return defaultMetrics
}

// RecordSolve records the outcome of a single route solve call.
func (m *Metrics) RecordSolve(algorithm string, success bool, duration time.Duration, totalWeight float64, hops int) {
	status := "success"
	if !success {
		status = "error"
	}

	m.SolveRequestsTotal.WithLabelValues(algorithm, status).Inc()
	m.SolveDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if success {
		m.RouteWeight.WithLabelValues(algorithm).Set(totalWeight)
		m.RouteHops.WithLabelValues(algorithm).Observe(float64(hops))
	}
}

// RecordGraphSize records the vertex/edge count of a graph a solve ran over.
func (m *Metrics) RecordGraphSize(operation string, nodes, edges int) {
	m.GraphNodesTotal.WithLabelValues(operation).Observe(float64(nodes))
	m.GraphEdgesTotal.WithLabelValues(operation).Observe(float64(edges))
}

// RecordCacheLookup records a route-result cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheHitsTotal.WithLabelValues(outcome).Inc()
}

// SetServiceInfo sets the service_info gauge used for version/environment
// dashboards.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts a standalone HTTP server exposing /metrics and
// /health.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
