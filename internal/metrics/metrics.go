// Package metrics collects and exposes Prometheus metrics for the HTTP
// surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records per-request metrics.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	denied   prometheus.Counter
	issued   *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry, so tests can
// instantiate it repeatedly without duplicate-registration panics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nourish_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nourish_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		denied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nourish_access_denied_total",
			Help: "Requests redirected away by the route guard.",
		}),
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nourish_certificates_issued_total",
			Help: "Certificates issued, by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(c.requests, c.latency, c.denied, c.issued)
	return c
}

// RecordRequest counts one finished request.
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.latency.Observe(duration.Seconds())
}

// RecordDenied counts one guard redirect.
func (c *Collector) RecordDenied() {
	c.denied.Inc()
}

// RecordCertificateIssued counts one issued certificate.
func (c *Collector) RecordCertificateIssued(certType string) {
	c.issued.WithLabelValues(certType).Inc()
}

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware instruments the wrapped handler.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		c.RecordRequest(r.Method, status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}
