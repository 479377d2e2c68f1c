package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
	apiErrors   *prometheus.CounterVec

	operations    *prometheus.CounterVec
	opLatency     *prometheus.HistogramVec
	itemsUnlocked prometheus.Counter
	itemsReturned prometheus.Counter
	deposited     prometheus.Counter
	feesCollected prometheus.Counter
	busPublished  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunft", Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sunft", Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sunft", Name: "http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunft", Name: "http_errors_total",
			Help: "HTTP error responses by route and error code.",
		}, []string{"route", "code"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunft", Name: "bundle_operations_total",
			Help: "Bundle operations by name and outcome.",
		}, []string{"op", "outcome"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sunft", Name: "bundle_operation_duration_seconds",
			Help:    "Bundle operation latency including lock wait.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		itemsUnlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunft", Name: "items_unlocked_total",
			Help: "Locked items released to bundle owners.",
		}),
		itemsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunft", Name: "items_returned_total",
			Help: "Locked items returned to creators on destroy.",
		}),
		deposited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunft", Name: "principal_deposited_units_total",
			Help: "Payment units deposited into bundles (approximate).",
		}),
		feesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunft", Name: "minting_fees_collected_units_total",
			Help: "Minting fee units collected (approximate).",
		}),
		busPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunft", Name: "events_published_total",
			Help: "Bundle events handed to the realtime bus by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors,
		m.operations, m.opLatency,
		m.itemsUnlocked, m.itemsReturned,
		m.deposited, m.feesCollected,
		m.busPublished,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveAPIError(route, code string) {
	if m == nil {
		return
	}
	m.apiErrors.WithLabelValues(route, code).Inc()
}

func (m *Metrics) ObserveOperation(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.opLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) AddUnlocked(n int) {
	if m != nil && n > 0 {
		m.itemsUnlocked.Add(float64(n))
	}
}

func (m *Metrics) AddReturned(n int) {
	if m != nil && n > 0 {
		m.itemsReturned.Add(float64(n))
	}
}

func (m *Metrics) AddDeposited(amount decimal.Decimal) {
	if m != nil && amount.Sign() > 0 {
		m.deposited.Add(amount.InexactFloat64())
	}
}

func (m *Metrics) AddFees(amount decimal.Decimal) {
	if m != nil && amount.Sign() > 0 {
		m.feesCollected.Add(amount.InexactFloat64())
	}
}

func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.busPublished.WithLabelValues("error").Inc()
		return
	}
	m.busPublished.WithLabelValues("ok").Inc()
}
