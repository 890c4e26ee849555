package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_orders_placed_total",
		Help: "Orders that completed every saga step.",
	})

	OrdersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_orders_failed_total",
		Help: "Placement attempts aborted mid-saga, by failing step.",
	}, []string{"step"})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_orders_cancelled_total",
		Help: "Completed orders later cancelled by a customer.",
	})
)
