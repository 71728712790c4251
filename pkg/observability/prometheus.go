package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taloscope"

// PrometheusHooks implements PipelineHooks and CacheHooks on top of a
// prometheus registry.
type PrometheusHooks struct {
	reg prometheus.Gatherer

	stages      *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	graphNodes  prometheus.Gauge
	graphEdges  prometheus.Gauge
	ranks       prometheus.Gauge
	crossings   prometheus.Gauge
	corrections prometheus.Histogram
	residual    prometheus.Counter
	cacheOps    *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
}

// NewPrometheusHooks registers the taloscope collectors on reg.
func NewPrometheusHooks(reg *prometheus.Registry) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		reg: reg,
		stages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_total",
			Help:      "Pipeline stage executions by stage and result.",
		}, []string{"stage", "result"}),
		durations: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"}),
		graphNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the most recently built graph.",
		}),
		graphEdges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the most recently built graph.",
		}),
		ranks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_ranks",
			Help:      "Ranks in the most recent layout.",
		}),
		crossings: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_crossings",
			Help:      "Edge crossings left by the most recent layout.",
		}),
		corrections: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_corrections",
			Help:      "Collision corrections applied per resolve.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}),
		residual: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_residual_overlaps_total",
			Help:      "Overlaps left after a single resolution pass.",
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by backend and outcome.",
		}, []string{"backend", "op"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"backend"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (p *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusHooks) OnBuildStart(context.Context, int) {}

func (p *PrometheusHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	p.stages.WithLabelValues("build", result(err)).Inc()
	p.durations.WithLabelValues("build").Observe(d.Seconds())
	if err == nil {
		p.graphNodes.Set(float64(nodes))
		p.graphEdges.Set(float64(edges))
	}
}

func (p *PrometheusHooks) OnLayoutStart(context.Context, int) {}

func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, ranks, crossings int, d time.Duration, err error) {
	p.stages.WithLabelValues("layout", result(err)).Inc()
	p.durations.WithLabelValues("layout").Observe(d.Seconds())
	if err == nil {
		p.ranks.Set(float64(ranks))
		p.crossings.Set(float64(crossings))
	}
}

func (p *PrometheusHooks) OnResolve(_ context.Context, corrections, residual int, d time.Duration) {
	p.stages.WithLabelValues("resolve", "ok").Inc()
	p.durations.WithLabelValues("resolve").Observe(d.Seconds())
	p.corrections.Observe(float64(corrections))
	p.residual.Add(float64(residual))
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, backend string) {
	p.cacheOps.WithLabelValues(backend, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, backend string) {
	p.cacheOps.WithLabelValues(backend, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, backend string, size int) {
	p.cacheOps.WithLabelValues(backend, "set").Inc()
	p.cacheBytes.WithLabelValues(backend).Add(float64(size))
}
