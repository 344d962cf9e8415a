// Package observability métricas Prometheus del API y del worker.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registro propio con las métricas de HTTP, cumplimiento, pagos y trabajos.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fulfillment     *prometheus.CounterVec
	payments        *prometheus.CounterVec
	jobs            *prometheus.CounterVec
}

// NewMetrics inicializa el registro y las métricas.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elhamd_http_requests_total",
		Help: "Peticiones HTTP por ruta, método y código.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "elhamd_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	fulfillment := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elhamd_fulfillment_operations_total",
		Help: "Operaciones del motor de cumplimiento (apply, release, reconcile) por resultado.",
	}, []string{"op", "outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elhamd_payments_total",
		Help: "Pagos y reembolsos por resultado (ok, rejected, error).",
	}, []string{"kind", "outcome"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elhamd_jobs_total",
		Help: "Ejecuciones de trabajos en segundo plano por tipo y resultado.",
	}, []string{"task", "outcome"})
	registry.MustRegister(requests, duration, fulfillment, payments, jobs)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		fulfillment:     fulfillment,
		payments:        payments,
		jobs:            jobs,
	}
}

// Handler devuelve el http.Handler del endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware registra cada petición de Fiber por patrón de ruta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveFulfillment implementa fulfillment.Recorder.
func (m *Metrics) ObserveFulfillment(op, outcome string) {
	if m == nil {
		return
	}
	m.fulfillment.WithLabelValues(op, outcome).Inc()
}

// ObservePayment implementa billing.PaymentRecorder.
func (m *Metrics) ObservePayment(kind, outcome string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(kind, outcome).Inc()
}

// ObserveJob cuenta una ejecución de trabajo.
func (m *Metrics) ObserveJob(task, outcome string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(task, outcome).Inc()
}

// Registerer expone el registro para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}
