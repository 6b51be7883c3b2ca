package core

import (
	"github.com/huangsam/repolens/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Analysis outcomes recorded by the analyses counter.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the pipeline counters on a private registry.
type Metrics struct {
	registry         *prometheus.Registry
	analyses         *prometheus.CounterVec
	manifestFailures prometheus.Counter
	renders          *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
}

// NewMetrics creates and registers a fresh set of counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repolens_analyses_total",
			Help: "Repository analyses by result.",
		}, []string{"result"}),
		manifestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repolens_manifest_fetch_failures_total",
			Help: "Manifest fetches that failed and were substituted with an empty mapping.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repolens_artifact_renders_total",
			Help: "Derived artifacts generated by a renderer.",
		}, []string{"format"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repolens_artifact_cache_hits_total",
			Help: "Derived artifacts served from the cache.",
		}, []string{"format"}),
	}
	m.registry.MustRegister(m.analyses, m.manifestFailures, m.renders, m.cacheHits)
	return m
}

// DefaultMetrics is the process-wide counter set used by the CLI.
var DefaultMetrics = NewMetrics()

// ObserveAnalysis counts a finished analysis.
func (m *Metrics) ObserveAnalysis(result string) {
	m.analyses.WithLabelValues(result).Inc()
}

// ObserveManifestFailure counts a degraded manifest fetch.
func (m *Metrics) ObserveManifestFailure() {
	m.manifestFailures.Inc()
}

// ObserveRender counts a renderer invocation.
func (m *Metrics) ObserveRender(format schema.ArtifactFormat) {
	m.renders.WithLabelValues(string(format)).Inc()
}

// ObserveCacheHit counts an artifact served without rendering.
func (m *Metrics) ObserveCacheHit(format schema.ArtifactFormat) {
	m.cacheHits.WithLabelValues(string(format)).Inc()
}

// WriteTextfile writes the counters in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
