// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors and the registry they live in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	postsCreated    prometheus.Counter
	likesToggled    *prometheus.CounterVec
	reconciled      *prometheus.CounterVec
}

// New creates a registry with Go runtime and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inkpost",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "posts_created_total",
			Help:      "Posts created.",
		}),
		likesToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "likes_toggled_total",
			Help:      "Like toggles by resulting state.",
		}, []string{"state"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "reconciled_associations_total",
			Help:      "Tags and sections attached to posts, by kind and whether the entity was created.",
		}, []string{"kind", "created"}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.postsCreated, m.likesToggled, m.reconciled)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// PostCreated records a new post.
func (m *Metrics) PostCreated() {
	if m == nil {
		return
	}
	m.postsCreated.Inc()
}

// LikeToggled records a like toggle ending in liked or unliked.
func (m *Metrics) LikeToggled(liked bool) {
	if m == nil {
		return
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	m.likesToggled.WithLabelValues(state).Inc()
}

// Reconciled records one association attached during reconciliation.
func (m *Metrics) Reconciled(kind string, created bool) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(kind, strconv.FormatBool(created)).Inc()
}

// Middleware records request count and latency. The route label is the chi
// route pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
