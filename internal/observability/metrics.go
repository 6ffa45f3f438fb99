package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics exposed on /metrics.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	billsCreated      prometheus.Counter
	billedAmount      prometheus.Counter
	stockReceipts     prometheus.Counter
	billingRejections *prometheus.CounterVec
}

// NewMetrics builds a private registry with HTTP and business metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mnb_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mnb_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	bills := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mnb_bills_created_total",
		Help: "Bills committed.",
	})
	billed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mnb_billed_amount_total",
		Help: "Sum of grand totals of committed bills.",
	})
	receipts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mnb_stock_receipts_total",
		Help: "Stock receipts committed.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mnb_billing_rejections_total",
		Help: "Bills refused, by reason.",
	}, []string{"reason"})
	registry.MustRegister(
		requests, duration, bills, billed, receipts, rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		billsCreated:      bills,
		billedAmount:      billed,
		stockReceipts:     receipts,
		billingRejections: rejections,
	}
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// BillCreated counts a committed bill.
func (m *Metrics) BillCreated(grandTotal float64) {
	if m == nil {
		return
	}
	m.billsCreated.Inc()
	if grandTotal > 0 {
		m.billedAmount.Add(grandTotal)
	}
}

// BillRejected counts a refused bill.
func (m *Metrics) BillRejected(reason string) {
	if m == nil {
		return
	}
	m.billingRejections.WithLabelValues(reason).Inc()
}

// StockReceived counts a committed stock receipt.
func (m *Metrics) StockReceived() {
	if m == nil {
		return
	}
	m.stockReceipts.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
