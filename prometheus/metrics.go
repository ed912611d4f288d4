package prometheus

import (
	"storefront-service/pkg/config"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Order workflow metrics
	OrderOperationsCounter prometheus.CounterVec

	// Payment reconciliation metrics
	PaymentOperationsCounter prometheus.CounterVec

	// Webhook metrics
	WebhookEventsCounter prometheus.CounterVec

	// Admin/demo metrics
	DemoSeedCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	// Use metric prefix from configuration
	prefix := cfg.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Order workflow metrics
	OrderOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation"},
	)

	// Payment reconciliation metrics
	PaymentOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_payment_operations_total",
			Help: "Total number of payment operations",
		},
		[]string{"operation"},
	)

	// Webhook metrics
	WebhookEventsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_webhook_events_total",
			Help: "Total number of payment webhook events by outcome",
		},
		[]string{"outcome"},
	)

	// Admin/demo metrics
	DemoSeedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_demo_seed_total",
			Help: "Total number of demo seed and reset runs",
		},
		[]string{"operation"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordOrderOperation increments the counter for order operations
func RecordOrderOperation(operation string) {
	OrderOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordPaymentOperation increments the counter for payment operations
func RecordPaymentOperation(operation string) {
	PaymentOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordWebhookEvent increments the counter for webhook outcomes
func RecordWebhookEvent(outcome string) {
	WebhookEventsCounter.WithLabelValues(outcome).Inc()
}

// RecordDemoSeed increments the counter for demo seed runs
func RecordDemoSeed(operation string) {
	DemoSeedCounter.WithLabelValues(operation).Inc()
}
