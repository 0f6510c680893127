package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Settlement related metrics
	TransfersDispatched prometheus.Counter
	TransfersExecuted   *prometheus.CounterVec
	OrdersSettled       prometheus.Counter
	OrdersFailed        prometheus.Counter
	SettlementLatency   prometheus.Histogram
	PendingOrders       prometheus.Gauge

	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	LedgerLatency    *prometheus.HistogramVec

	// Notification metrics
	NotificationsEmitted  prometheus.Counter
	NotificationPublishes *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on the default
// registry.
func NewMetrics(namespace, subsystem string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewMetricsWith registers all application metrics on reg. Tests pass a
// fresh registry so packages can build metrics repeatedly.
func NewMetricsWith(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransfersDispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transfers_dispatched_total",
			Help:      "Total number of external value transfers dispatched",
		}),
		TransfersExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transfers_executed_total",
			Help:      "Total number of transfer executions against the payment service",
		}, []string{"outcome"}),
		OrdersSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_settled_total",
			Help:      "Total number of orders settled after transfer success",
		}),
		OrdersFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_failed_total",
			Help:      "Total number of orders failed after transfer failure",
		}),
		SettlementLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "settlement_duration_seconds",
			Help:      "Time between order creation and settlement",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		PendingOrders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pending_orders",
			Help:      "Current number of orders awaiting settlement",
		}),
		LedgerOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ledger_operations_total",
			Help:      "Total number of ledger operations",
		}, []string{"operation", "status"}),
		LedgerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ledger_operation_duration_seconds",
			Help:      "Duration of ledger operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		NotificationsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_emitted_total",
			Help:      "Total number of notifications appended to the ledger",
		}),
		NotificationPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_publishes_total",
			Help:      "Total number of notification broker publishes",
		}, []string{"status"}),
	}
}
