package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relgraph"

// Metrics holds the service collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	ExtractionsTotal  *prometheus.CounterVec
	ExtractedNodes    prometheus.Histogram
	ExtractedEdges    prometheus.Histogram
	SkippedMatches    prometheus.Counter
	LayoutsTotal      *prometheus.CounterVec
	LayoutDuration    *prometheus.HistogramVec
	DroppedEdges      prometheus.Counter
	LayoutsInFlight   prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extract",
				Name:      "runs_total",
				Help:      "Extractions by outcome (matched, empty)",
			},
			[]string{"outcome"},
		),
		ExtractedNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "nodes",
			Help:      "Nodes found per extraction",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		ExtractedEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "edges",
			Help:      "Edges found per extraction",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		SkippedMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "skipped_matches_total",
			Help:      "Pattern matches skipped because a label failed to normalize",
		}),
		LayoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "layout",
				Name:      "runs_total",
				Help:      "Layouts by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		LayoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "layout",
				Name:      "duration_seconds",
				Help:      "Layout computation time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		DroppedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "dropped_edges_total",
			Help:      "Edges left out of render output because a label did not resolve",
		}),
		LayoutsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "in_flight",
			Help:      "Layouts currently holding a concurrency slot",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	m.registry.MustRegister(
		m.ExtractionsTotal,
		m.ExtractedNodes,
		m.ExtractedEdges,
		m.SkippedMatches,
		m.LayoutsTotal,
		m.LayoutDuration,
		m.DroppedEdges,
		m.LayoutsInFlight,
		m.HTTPRequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveExtraction(nodes, edges, skipped int) {
	outcome := "matched"
	if edges == 0 {
		outcome = "empty"
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
	m.ExtractedNodes.Observe(float64(nodes))
	m.ExtractedEdges.Observe(float64(edges))
	m.SkippedMatches.Add(float64(skipped))
}

func (m *Metrics) ObserveLayout(mode, outcome string, took time.Duration, dropped int) {
	m.LayoutsTotal.WithLabelValues(mode, outcome).Inc()
	if outcome == "ok" {
		m.LayoutDuration.WithLabelValues(mode).Observe(took.Seconds())
	}
	if dropped > 0 {
		m.DroppedEdges.Add(float64(dropped))
	}
}
