package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all pool program metrics
type Collector struct {
	// Operation metrics
	OperationsTotal  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Pool lifecycle metrics
	PoolsCreated  prometheus.Counter
	PoolsReset    prometheus.Counter
	PendingOrders *prometheus.GaugeVec

	// Share flow metrics
	SharesMinted    *prometheus.CounterVec
	SharesBurned    prometheus.Counter
	FeeSharesMinted *prometheus.CounterVec

	// Fee schedule metrics
	FeeCyclesCollected prometheus.Counter
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Operation metrics
	c.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "operations",
			Name:      "total",
			Help:      "Total number of pool operations processed",
		},
		[]string{"operation", "outcome"},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signalpool",
			Subsystem: "operations",
			Name:      "latency_ms",
			Help:      "Operation processing latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)

	// Pool lifecycle metrics
	c.PoolsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "pools",
			Name:      "created_total",
			Help:      "Total number of pools created",
		},
	)

	c.PoolsReset = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "pools",
			Name:      "reset_total",
			Help:      "Total number of pools reset by full redemption",
		},
	)

	c.PendingOrders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "signalpool",
			Subsystem: "pools",
			Name:      "pending_orders",
			Help:      "Number of unsettled orders per pool",
		},
		[]string{"pool"},
	)

	// Share flow metrics
	c.SharesMinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "shares",
			Name:      "minted_total",
			Help:      "Total pool shares minted",
		},
		[]string{"operation"},
	)

	c.SharesBurned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "shares",
			Name:      "burned_total",
			Help:      "Total pool shares burned by redemptions",
		},
	)

	c.FeeSharesMinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "shares",
			Name:      "fee_minted_total",
			Help:      "Total fee shares minted, by recipient",
		},
		[]string{"recipient"},
	)

	// Fee schedule metrics
	c.FeeCyclesCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signalpool",
			Subsystem: "fees",
			Name:      "cycles_collected_total",
			Help:      "Total whole fee periods collected",
		},
	)

	// Register all metrics
	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	prometheus.MustRegister(c.OperationsTotal)
	prometheus.MustRegister(c.OperationLatency)

	prometheus.MustRegister(c.PoolsCreated)
	prometheus.MustRegister(c.PoolsReset)
	prometheus.MustRegister(c.PendingOrders)

	prometheus.MustRegister(c.SharesMinted)
	prometheus.MustRegister(c.SharesBurned)
	prometheus.MustRegister(c.FeeSharesMinted)

	prometheus.MustRegister(c.FeeCyclesCollected)
}

// ============ Recording Helpers ============

// RecordOperation records a processed operation and its outcome
func (c *Collector) RecordOperation(operation, outcome string) {
	c.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordOperationLatency records operation processing latency
func (c *Collector) RecordOperationLatency(operation string, latencyMs float64) {
	c.OperationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordSharesMinted records shares minted by an operation
func (c *Collector) RecordSharesMinted(operation string, amount uint64) {
	c.SharesMinted.WithLabelValues(operation).Add(float64(amount))
}

// RecordFeeShares records fee shares minted to a recipient
func (c *Collector) RecordFeeShares(recipient string, amount uint64) {
	c.FeeSharesMinted.WithLabelValues(recipient).Add(float64(amount))
}

// RecordPendingOrders records the pending order count of a pool
func (c *Collector) RecordPendingOrders(pool string, count int) {
	c.PendingOrders.WithLabelValues(pool).Set(float64(count))
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
