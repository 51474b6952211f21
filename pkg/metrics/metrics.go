package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Observe records one finished request.
func (m *ServerMetrics) Observe(handler string, status int, start time.Time) {
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
}

// ActionMetrics counts fulfillment actions by outcome
// (ok, noop, validation, auth, forbidden, not_found, conflict, transient).
type ActionMetrics struct {
	Actions *prometheus.CounterVec
}

func NewActionMetrics(reg prometheus.Registerer, service string) *ActionMetrics {
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "fulfillment_actions_total",
		Help:      "Fulfillment actions by action and outcome.",
	}, []string{"action", "outcome"})
	reg.MustRegister(actions)
	return &ActionMetrics{Actions: actions}
}

func (m *ActionMetrics) Record(action, outcome string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves the metrics of a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
