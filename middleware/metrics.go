package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	paymentSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_sessions_created_total",
			Help: "Total number of payment sessions created",
		},
		[]string{"provider", "status"},
	)

	paymentsCapturedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_captured_total",
			Help: "Total number of payment captures",
		},
		[]string{"provider", "status"},
	)

	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		},
		[]string{"status"},
	)

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of webhook events received",
		},
		[]string{"event_type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(paymentSessionsTotal)
	prometheus.MustRegister(paymentsCapturedTotal)
	prometheus.MustRegister(ordersCreatedTotal)
	prometheus.MustRegister(webhookEventsTotal)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordPaymentSession(provider, status string) {
	paymentSessionsTotal.WithLabelValues(provider, status).Inc()
}

func RecordPaymentCaptured(provider, status string) {
	paymentsCapturedTotal.WithLabelValues(provider, status).Inc()
}

func RecordOrderCreated(status string) {
	ordersCreatedTotal.WithLabelValues(status).Inc()
}

func RecordWebhookEvent(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}
