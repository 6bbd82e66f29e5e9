// Package metrics instruments lead fetches, aggregations and HTTP requests with Prometheus.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lead_insights"

type Recorder struct {
	registry *prometheus.Registry

	fetches           *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	snapshotLeads     *prometheus.GaugeVec
	aggregations      *prometheus.CounterVec
	aggregateDuration prometheus.Histogram
	httpRequests      *prometheus.CounterVec
}

// New creates a Recorder on its own registry, including Go runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Lead snapshot fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching a lead snapshot.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		snapshotLeads: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_leads",
			Help:      "Leads in the current snapshot per source.",
		}, []string{"source"}),
		aggregations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Analytics requests by source and memo outcome.",
		}, []string{"source", "cache"}),
		aggregateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Time spent computing an aggregation on a memo miss.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route, method and status.",
		}, []string{"route", "method", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObserveFetch(source string, took time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.fetches.WithLabelValues(source, outcome).Inc()
	r.fetchDuration.WithLabelValues(source).Observe(took.Seconds())
}

// ObserveSnapshot records how many leads the stored snapshot for source holds.
func (r *Recorder) ObserveSnapshot(source string, count int) {
	if r == nil {
		return
	}
	r.snapshotLeads.WithLabelValues(source).Set(float64(count))
}

func (r *Recorder) ObserveAggregation(source string, hit bool, took time.Duration) {
	if r == nil {
		return
	}
	cache := "miss"
	if hit {
		cache = "hit"
	}
	r.aggregations.WithLabelValues(source, cache).Inc()
	if !hit {
		r.aggregateDuration.Observe(took.Seconds())
	}
}

func (r *Recorder) ObserveRequest(route, method string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
