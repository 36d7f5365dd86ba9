package docbind

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements the Metrics interface using Prometheus
type PrometheusMetrics struct {
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	registry   *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
// If registry is nil, uses the default Prometheus registry
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}

	pm := &PrometheusMetrics{
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		registry:   registry,
	}

	pm.registerDefaultMetrics()
	return pm
}

// registerDefaultMetrics registers all standard docbind metrics
func (p *PrometheusMetrics) registerDefaultMetrics() {
	counter := func(name, subsystem, metric, help string, labels ...string) {
		p.counters[name] = promauto.With(p.registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docbind",
				Subsystem: subsystem,
				Name:      metric,
				Help:      help,
			},
			labels,
		)
	}

	counter(MetricPutSuccess, "put", "success_total", "Successful document writes")
	counter(MetricPutError, "put", "errors_total", "Failed document writes")
	counter(MetricGetSuccess, "get", "success_total", "Successful document fetches")
	counter(MetricGetError, "get", "errors_total", "Failed document fetches")
	counter(MetricDeleteSuccess, "delete", "success_total", "Successful document deletes")
	counter(MetricDeleteError, "delete", "errors_total", "Failed document deletes")
	counter(MetricSearchSuccess, "search", "success_total", "Successful searches")
	counter(MetricSearchError, "search", "errors_total", "Failed searches")
	counter(MetricSchemaProvision, "schema", "provisions_total", "Writes retried with the model schema attached")
	counter(MetricCacheHits, "cache", "hits_total", "Document cache hits")
	counter(MetricCacheMisses, "cache", "misses_total", "Document cache misses")

	histogram := func(name, subsystem, metric, help string, buckets []float64) {
		p.histograms[name] = promauto.With(p.registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "docbind",
				Subsystem: subsystem,
				Name:      metric,
				Help:      help,
				Buckets:   buckets,
			},
			[]string{},
		)
	}

	histogram(MetricPutDuration, "put", "duration_seconds", "Write duration in seconds", prometheus.DefBuckets)
	histogram(MetricGetDuration, "get", "duration_seconds", "Fetch duration in seconds", prometheus.DefBuckets)
	histogram(MetricDeleteDuration, "delete", "duration_seconds", "Delete duration in seconds", prometheus.DefBuckets)
	histogram(MetricSearchDuration, "search", "duration_seconds", "Search duration in seconds",
		[]float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5})
	histogram(MetricSearchResults, "search", "results", "Number of hits returned by searches",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Increment increments a Prometheus counter
func (p *PrometheusMetrics) Increment(name string, tags ...string) {
	counter, ok := p.counters[name]
	if !ok {
		counter = promauto.With(p.registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docbind",
				Name:      sanitizeMetricName(name),
				Help:      "Dynamic counter: " + name,
			},
			p.extractLabels(tags),
		)
		p.counters[name] = counter
	}

	counter.With(p.extractLabelValues(tags)).Inc()
}

// Gauge sets a Prometheus gauge value
func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...string) {
	gauge, ok := p.gauges[name]
	if !ok {
		gauge = promauto.With(p.registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "docbind",
				Name:      sanitizeMetricName(name),
				Help:      "Dynamic gauge: " + name,
			},
			p.extractLabels(tags),
		)
		p.gauges[name] = gauge
	}

	gauge.With(p.extractLabelValues(tags)).Set(value)
}

// Histogram records a value in a Prometheus histogram
func (p *PrometheusMetrics) Histogram(name string, value float64, tags ...string) {
	histogram, ok := p.histograms[name]
	if !ok {
		histogram = promauto.With(p.registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "docbind",
				Name:      sanitizeMetricName(name),
				Help:      "Dynamic histogram: " + name,
				Buckets:   prometheus.DefBuckets,
			},
			p.extractLabels(tags),
		)
		p.histograms[name] = histogram
	}

	histogram.With(p.extractLabelValues(tags)).Observe(value)
}

// Timing records a duration in a Prometheus histogram
func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...string) {
	p.Histogram(name, duration.Seconds(), tags...)
}

// extractLabels extracts label names from tags (every even index)
func (p *PrometheusMetrics) extractLabels(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	labels := make([]string, 0, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		labels = append(labels, tags[i])
	}
	return labels
}

// extractLabelValues creates a label map from tags (key-value pairs)
func (p *PrometheusMetrics) extractLabelValues(tags []string) prometheus.Labels {
	if len(tags) == 0 {
		return prometheus.Labels{}
	}

	labels := make(prometheus.Labels)
	for i := 0; i < len(tags)-1; i += 2 {
		labels[tags[i]] = tags[i+1]
	}
	return labels
}

// sanitizeMetricName turns a dotted metric name into a Prometheus-safe one
func sanitizeMetricName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' || c == '-' {
			c = '_'
		}
		out[i] = c
	}
	return string(out)
}

// GetRegistry returns the underlying Prometheus registry
func (p *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return p.registry
}
