package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Optimizations counts engine runs by outcome (selected, empty).
	Optimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "load_optimizations_total", Help: "Load optimisations by outcome."},
		[]string{"outcome"},
	)
	OptimizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "load_optimization_duration_seconds", Help: "Subset search duration in seconds.", Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}},
	)
	CandidateOrders = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "load_optimization_candidates", Help: "Orders submitted per optimisation.", Buckets: prometheus.LinearBuckets(0, 5, 6)},
	)
	// CacheLookups counts result cache lookups by result (hit, miss, error).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "load_cache_lookups_total", Help: "Result cache lookups by result."},
		[]string{"result"},
	)
)

// RegisterDefault registers collectors on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Optimizations)
		Registry.MustRegister(OptimizeDuration)
		Registry.MustRegister(CandidateOrders)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
