// Package monitoring provides Prometheus metrics for the web application
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the application
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	adviceRequestsTotal   prometheus.Counter
	adviceFailuresTotal   prometheus.Counter
	usersRegisteredTotal  prometheus.Counter
	uploadsProcessedTotal prometheus.Counter
	promptTokensTotal     prometheus.Counter
	completionTokensTotal prometheus.Counter
}

// NewMetrics creates the application metrics on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "healy_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "healy_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		adviceRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "healy_advice_requests_total",
			Help: "Total number of advice requests sent to the completion endpoint",
		}),
		adviceFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "healy_advice_failures_total",
			Help: "Total number of failed advice requests",
		}),
		usersRegisteredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "healy_users_registered_total",
			Help: "Total number of registered users",
		}),
		uploadsProcessedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "healy_uploads_processed_total",
			Help: "Total number of uploaded files summarized",
		}),
		promptTokensTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "healy_prompt_tokens_total",
			Help: "Total prompt tokens reported by the completion endpoint",
		}),
		completionTokensTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "healy_completion_tokens_total",
			Help: "Total completion tokens reported by the completion endpoint",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one HTTP request observation
func (m *Metrics) RecordRequest(method, path string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAdviceRequest counts an advice request
func (m *Metrics) RecordAdviceRequest() {
	m.adviceRequestsTotal.Inc()
}

// RecordAdviceFailure counts a failed advice request
func (m *Metrics) RecordAdviceFailure() {
	m.adviceFailuresTotal.Inc()
}

// RecordUserRegistered counts a new registration
func (m *Metrics) RecordUserRegistered() {
	m.usersRegisteredTotal.Inc()
}

// RecordUploadProcessed counts a summarized upload
func (m *Metrics) RecordUploadProcessed() {
	m.uploadsProcessedTotal.Inc()
}

// RecordTokenUsage counts reported token usage
func (m *Metrics) RecordTokenUsage(promptTokens, completionTokens int) {
	m.promptTokensTotal.Add(float64(promptTokens))
	m.completionTokensTotal.Add(float64(completionTokens))
}
