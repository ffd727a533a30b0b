package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var OrdersSigned = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "hyperarb_orders_signed_total",
	Help: "Order actions signed",
})

var OrderSubmits = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "hyperarb_order_submit_total",
	Help: "Order submissions by outcome",
}, []string{"status"})

var SignDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "hyperarb_sign_duration_seconds",
	Help:    "Time to hash and sign one action",
	Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
})

var Cycles = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "hyperarb_cycles_total",
	Help: "Strategy cycles by result",
}, []string{"result"})

func init() {
	prometheus.MustRegister(OrdersSigned, OrderSubmits, SignDuration, Cycles)
}

// Submit outcomes.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
	StatusDryRun   = "dry_run"
)

// Cycle results.
const (
	CycleOK      = "ok"
	CycleSkipped = "skipped"
	CycleError   = "error"
)

// ObserveSign records one signing that started at start.
func ObserveSign(start time.Time) {
	OrdersSigned.Inc()
	SignDuration.Observe(time.Since(start).Seconds())
}
