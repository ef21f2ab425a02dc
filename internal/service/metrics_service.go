package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	gatewayCalls    *prometheus.CounterVec
	storeEvents     *prometheus.CounterVec
	storeIODuration *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_call_duration_seconds",
		Help:    "Duration of remote endpoint calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	gatewayCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calls_total",
		Help: "Remote endpoint calls by outcome",
	}, []string{"endpoint", "outcome"})

	storeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_events_total",
		Help: "Domain store mutations by collection and kind",
	}, []string{"collection", "kind"})

	storeIODuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_io_duration_seconds",
		Help:    "Duration of collection loads and saves",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gatewayDuration, gatewayCalls, storeEvents, storeIODuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gatewayDuration: gatewayDuration,
		gatewayCalls:    gatewayCalls,
		storeEvents:     storeEvents,
		storeIODuration: storeIODuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGatewayCall records one remote call outcome.
func (m *MetricsService) ObserveGatewayCall(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	m.gatewayCalls.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveDBQuery records a persistence round trip. The label is the load_/save_ key.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeIODuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordStoreEvent is a store listener counting mutations.
func (m *MetricsService) RecordStoreEvent(evt models.Event) error {
	if m == nil {
		return nil
	}
	m.storeEvents.WithLabelValues(evt.Kind.Collection(), string(evt.Kind)).Inc()
	return nil
}
