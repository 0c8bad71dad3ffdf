// Package metrics exposes Prometheus collectors for the API.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "daycare"

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry             *prometheus.Registry
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	contentCreated       *prometheus.CounterVec
	newslettersPublished prometheus.Counter
	recipientsCreated    prometheus.Counter
	loginAttempts        *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		contentCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_created_total",
			Help:      "Content entities created by kind.",
		}, []string{"kind"}),
		newslettersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletters_published_total",
			Help:      "Newsletters moved from draft to published.",
		}),
		recipientsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletter_recipients_created_total",
			Help:      "Recipient rows created by publish fan-out.",
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Token authentication attempts by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.contentCreated,
		m.newslettersPublished,
		m.recipientsCreated,
		m.loginAttempts,
	)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ContentCreated counts a created newsletter, announcement, event, category or child
func (m *Metrics) ContentCreated(kind string) {
	if m == nil {
		return
	}
	m.contentCreated.WithLabelValues(kind).Inc()
}

// NewsletterPublished records a publish and the recipients it added.
// A repeated publish only adds recipients.
func (m *Metrics) NewsletterPublished(firstPublish bool, recipients int64) {
	if m == nil {
		return
	}
	if firstPublish {
		m.newslettersPublished.Inc()
	}
	m.recipientsCreated.Add(float64(recipients))
}

// LoginAttempt records a token authentication result
func (m *Metrics) LoginAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
