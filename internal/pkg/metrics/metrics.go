package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kelontong"

// CheckoutMetrics counts settled sales and rejected checkouts. A nil
// *CheckoutMetrics is valid and records nothing.
type CheckoutMetrics struct {
	Checkouts  *prometheus.CounterVec
	Rejections *prometheus.CounterVec
	Revenue    prometheus.Counter
	ItemsSold  prometheus.Counter
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pos",
			Name:      "checkouts_total",
			Help:      "Committed checkouts by payment method.",
		}, []string{"method"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pos",
			Name:      "checkout_rejections_total",
			Help:      "Checkouts rejected before commit, by reason.",
		}, []string{"reason"}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pos",
			Name:      "revenue_rupiah_total",
			Help:      "Sum of committed transaction totals in rupiah.",
		}),
		ItemsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pos",
			Name:      "items_sold_total",
			Help:      "Units sold across committed transactions.",
		}),
	}
	reg.MustRegister(m.Checkouts, m.Rejections, m.Revenue, m.ItemsSold)
	return m
}

func (m *CheckoutMetrics) ObserveCommit(method string, total int64, items int) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(method).Inc()
	m.Revenue.Add(float64(total))
	m.ItemsSold.Add(float64(items))
}

func (m *CheckoutMetrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(reason).Inc()
}

// ServerMetrics instruments HTTP handlers by chi route pattern.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Middleware records one request count and latency sample per request.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
