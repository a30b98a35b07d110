package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// アプリ専用のレジストリ
	Registry = prometheus.NewRegistry()

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	OrdersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders successfully placed.",
		},
	)

	OrderStatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Order status transitions applied by admins.",
		},
		[]string{"from", "to"},
	)

	// 在庫の compare-and-decrement が負けた回数
	StockConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "stock",
			Name:      "decrement_conflicts_total",
			Help:      "Stock decrements rejected because stock was insufficient at write time.",
		},
	)

	CartVersionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "version_conflicts_total",
			Help:      "Cart line updates retried after an optimistic version conflict.",
		},
	)

	TxRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "db",
			Name:      "tx_retries_total",
			Help:      "Transactions re-run after a serialization failure or deadlock.",
		},
	)
)

func init() {
	Registry.MustRegister(
		HTTPInFlight,
		HTTPRequests,
		HTTPDuration,
		OrdersPlaced,
		OrderStatusTransitions,
		StockConflicts,
		CartVersionConflicts,
		TxRetries,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// /metrics 用
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
