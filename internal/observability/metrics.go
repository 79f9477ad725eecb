package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the service. A nil *Metrics is a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	roleResolutions *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests received.",
		}, []string{"method", "path", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "code"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Failed requests by error code.",
		}, []string{"method", "path", "error_code"}),
		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Checkout sessions created by mode.",
		}, []string{"mode"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_emails_total",
			Help: "Notification email sends by content type and outcome.",
		}, []string{"content_type", "outcome"}),
		roleResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "role_resolutions_total",
			Help: "Role resolutions by source.",
		}, []string{"source"}),
	}
}

// RecordRequest increments request counters and observes latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requests.WithLabelValues(method, path, code).Inc()
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

// RecordCheckout counts a created checkout session.
func (m *Metrics) RecordCheckout(mode string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(mode).Inc()
}

// RecordNotification counts one recipient send.
func (m *Metrics) RecordNotification(contentType string, sent bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if sent {
		outcome = "sent"
	}
	m.notifications.WithLabelValues(contentType, outcome).Inc()
}

// RecordRoleResolution counts where a resolved role came from.
func (m *Metrics) RecordRoleResolution(source string) {
	if m == nil {
		return
	}
	m.roleResolutions.WithLabelValues(source).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
