package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"route", "method", "status"})

	// HTTPLatency records request latency by route and method.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// StoreLatency records MongoDB operation latency by collection and operation.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_store_operation_duration_seconds",
		Help:    "Store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "operation"})

	// LikeToggles counts like toggles by entity kind and resulting action.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_like_toggles_total",
		Help: "Total number of like toggles",
	}, []string{"kind", "action"})

	// PushDeliveries counts web push attempts by outcome.
	PushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_push_deliveries_total",
		Help: "Total number of web push deliveries by outcome",
	}, []string{"outcome"})

	// RealtimeClients is the number of connected websocket viewers.
	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "postboard_realtime_clients",
		Help: "Number of connected websocket clients",
	})
)

// TrackStore returns a function that records the operation latency when called (e.g. defer).
func TrackStore(collection, operation string) func() {
	start := time.Now()
	return func() {
		StoreLatency.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	}
}
