// Package metrics exposes Prometheus instrumentation for simulation and lineup building.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "tennis_sim"

	StageSimulate = "simulate"
	StageProject  = "project"
	StageBuild    = "build"
	StageSelect   = "select"
	StagePipeline = "pipeline"

	RejectInfeasible = "infeasible"
	RejectDuplicate  = "duplicate"
)

// Collector owns every metric of the service. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	trialsSimulated  prometheus.Counter
	pairingsSkipped  prometheus.Counter
	projectionSets   prometheus.Counter
	lineupsBuilt     prometheus.Counter
	lineupsRejected  *prometheus.CounterVec
	lineupsSelected  prometheus.Counter
	stageDuration    *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpRequestDurMs *prometheus.HistogramVec
}

// NewCollector registers all metrics on a fresh registry, keeping Go runtime collectors out of the output
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	c := &Collector{registry: reg}

	c.trialsSimulated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "simulator",
		Name:      "trials_total",
		Help:      "Total number of simulated matches",
	})
	c.pairingsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "simulator",
		Name:      "pairings_skipped_total",
		Help:      "Pairings skipped because they did not hold exactly two competitors",
	})
	c.projectionSets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "projection_sets_total",
		Help:      "Projection sets sampled from score distributions",
	})
	c.lineupsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "lineups_built_total",
		Help:      "Lineups accepted into the candidate pool",
	})
	c.lineupsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "lineups_rejected_total",
		Help:      "Lineups not built or not kept, by reason",
	}, []string{"reason"})
	c.lineupsSelected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "lineups_selected_total",
		Help:      "Lineups emitted in final lineup sets",
	})
	c.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Wall clock duration of pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage"})
	c.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Result cache lookups by outcome",
	}, []string{"result"})
	c.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	c.httpRequestDurMs = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})

	return c
}

// Registry exposes the underlying registry for gathering
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) AddTrials(n int) {
	if c == nil {
		return
	}
	c.trialsSimulated.Add(float64(n))
}

func (c *Collector) PairingSkipped() {
	if c == nil {
		return
	}
	c.pairingsSkipped.Inc()
}

func (c *Collector) ProjectionSetBuilt() {
	if c == nil {
		return
	}
	c.projectionSets.Inc()
}

func (c *Collector) LineupBuilt() {
	if c == nil {
		return
	}
	c.lineupsBuilt.Inc()
}

func (c *Collector) LineupRejected(reason string) {
	if c == nil {
		return
	}
	c.lineupsRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) LineupsSelected(n int) {
	if c == nil {
		return
	}
	c.lineupsSelected.Add(float64(n))
}

// ObserveStage records how long a pipeline stage took
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CacheLookup records a cache hit or miss
func (c *Collector) CacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(endpoint, method, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	c.httpRequestDurMs.WithLabelValues(endpoint, method, status).Observe(float64(d.Milliseconds()))
}
