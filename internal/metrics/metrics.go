// Package metrics exports pipeline, cache and interpreter activity as
// Prometheus metrics by implementing the observability hook interfaces.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/gmplayout/pkg/observability"
)

const namespace = "gmplayout"

// =============================================================================
// Collectors
// =============================================================================

// Collectors holds the metric vectors and the registry they live in.
type Collectors struct {
	registry *prometheus.Registry

	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
	layouts         *prometheus.CounterVec
	complianceScore *prometheus.HistogramVec
	checks          *prometheus.CounterVec
	cacheOps        *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	interpreter     *prometheus.HistogramVec
}

// New creates collectors on a fresh registry. Go runtime and process
// collectors are registered alongside.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collectors{
		registry: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures",
		}, []string{"stage"}),
		layouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "layouts_total",
			Help:      "Generated layouts by facility type",
		}, []string{"facility_type"}),
		complianceScore: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "compliance",
			Name:      "score",
			Help:      "Distribution of compliance scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"source"}),
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compliance",
			Name:      "checks_total",
			Help:      "Compliance checks by jurisdiction",
		}, []string{"jurisdiction"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and writes by key type and outcome",
		}, []string{"key_type", "op"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		interpreter: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "interpreter",
			Name:      "request_duration_seconds",
			Help:      "Interpreter request latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"model", "status"}),
	}
}

// Registry returns the registry backing the collectors.
func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Install registers c as the global pipeline, cache and interpreter hooks.
func (c *Collectors) Install() {
	observability.SetPipelineHooks(pipelineHooks{c})
	observability.SetCacheHooks(cacheHooks{c})
	observability.SetInterpreterHooks(interpreterHooks{c})
}

// =============================================================================
// Hook adapters
// =============================================================================

type pipelineHooks struct{ c *Collectors }

func (h pipelineHooks) OnStageStart(context.Context, string, int) {}

func (h pipelineHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		h.c.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (h pipelineHooks) OnGenerated(_ context.Context, facilityType string, _ int, score int) {
	h.c.layouts.WithLabelValues(facilityType).Inc()
	h.c.complianceScore.WithLabelValues("generate").Observe(float64(score))
}

func (h pipelineHooks) OnCheck(_ context.Context, jurisdiction string, score, _ int) {
	h.c.checks.WithLabelValues(jurisdiction).Inc()
	h.c.complianceScore.WithLabelValues("check").Observe(float64(score))
}

type cacheHooks struct{ c *Collectors }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.c.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.c.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.c.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

type interpreterHooks struct{ c *Collectors }

func (h interpreterHooks) OnRequest(context.Context, string) {}

func (h interpreterHooks) OnResponse(_ context.Context, model string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	h.c.interpreter.WithLabelValues(model, status).Observe(d.Seconds())
}
