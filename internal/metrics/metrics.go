// Package metrics exposes Prometheus collectors for the web server, the
// snapshot cache and the mutation flows. A nil *Recorder is valid and
// records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forts"

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	flows           *prometheus.CounterVec
	snapshotFetches *prometheus.CounterVec
	snapshotSize    prometheus.Gauge
}

// New creates a recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		flows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutation_flows_total",
			Help:      "Create/delete flow outcomes.",
		}, []string{"flow", "outcome"}),
		snapshotFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_fetches_total",
			Help:      "Read-all fetches of the fort table by result.",
		}, []string{"result"}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Number of records in the last successfully fetched snapshot.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.flows,
		r.snapshotFetches,
		r.snapshotSize,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveFlow records the outcome of a create or delete flow.
func (r *Recorder) ObserveFlow(flow, outcome string) {
	if r == nil {
		return
	}
	r.flows.WithLabelValues(flow, outcome).Inc()
}

// ObserveFetch records a read-all of the store.
func (r *Recorder) ObserveFetch(ok bool, records int) {
	if r == nil {
		return
	}
	if !ok {
		r.snapshotFetches.WithLabelValues("error").Inc()
		return
	}
	r.snapshotFetches.WithLabelValues("ok").Inc()
	r.snapshotSize.Set(float64(records))
}

// SnapshotSize exposes the snapshot gauge for tests.
func (r *Recorder) SnapshotSize() prometheus.Gauge {
	return r.snapshotSize
}

// Flows exposes the flow counter for tests.
func (r *Recorder) Flows() *prometheus.CounterVec {
	return r.flows
}
