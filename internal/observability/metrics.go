package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	requestsTotal      *prometheus.CounterVec
	latencySeconds     *prometheus.HistogramVec
	submissionEvents   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	analyticsRequests  *prometheus.CounterVec
	uploadsRejected    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		submissionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_events_total",
			Help: "Lifecycle events recorded on submissions.",
		}, []string{"event"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Notifications produced by the backend.",
		}, []string{"type"})

		analyticsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_requests_total",
			Help: "Analytics requests by cache outcome.",
		}, []string{"result"})

		uploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Uploads rejected before storage.",
		}, []string{"reason"})

		prometheus.MustRegister(requestsTotal, latencySeconds, submissionEvents, notificationsTotal, analyticsRequests, uploadsRejected)
	})
}

// Requests exposes the counter for HTTP requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for HTTP requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// SubmissionEvents exposes the submission lifecycle event counter.
func SubmissionEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionEvents
}

// NotificationsPublished exposes the notification production counter.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// AnalyticsRequests exposes the analytics cache outcome counter.
func AnalyticsRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsRequests
}

// UploadsRejected exposes the upload rejection counter.
func UploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsRejected
}
