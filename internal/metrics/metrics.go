// Package metrics exposes Prometheus counters for HTTP traffic, sessions
// and profile reconciliation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/go-community-market/internal/session"
)

type Collector struct {
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	sessionEvents   *prometheus.CounterVec
	profilesCreated prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "market_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_session_events_total",
			Help: "Sign-in and sign-out events seen by this instance.",
		}, []string{"type"}),
		profilesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "market_profiles_created_total",
			Help: "Profiles created lazily on first sight of an identity.",
		}),
	}
	reg.MustRegister(c.requests, c.latency, c.sessionEvents, c.profilesCreated)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordSessionEvent(evt session.Event) {
	c.sessionEvents.WithLabelValues(string(evt.Type)).Inc()
}

func (c *Collector) RecordProfileCreated() {
	c.profilesCreated.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
