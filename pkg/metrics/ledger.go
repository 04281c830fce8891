// Package metrics expone los contadores Prometheus del ledger y del servidor HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "obralink"

// LedgerMetrics contadores del ledger de stock. Un valor nil o construido sin registerer no registra nada.
type LedgerMetrics struct {
	recorded   *prometheus.CounterVec
	reversed   *prometheus.CounterVec
	reconciled *prometheus.CounterVec
	failed     *prometheus.CounterVec
}

// NewLedgerMetrics registra los contadores del ledger en reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movements_recorded_total",
		Help:      "Movimientos registrados en el ledger.",
	}, []string{"tipo"})
	reversed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movements_reversed_total",
		Help:      "Movimientos revertidos (borrados) del ledger.",
	}, []string{"tipo"})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_lines_total",
		Help:      "Líneas de factura conciliadas por resultado.",
	}, []string{"resultado"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_failures_total",
		Help:      "Operaciones del ledger revertidas por error.",
	}, []string{"op"})
	reg.MustRegister(recorded, reversed, reconciled, failed)
	return &LedgerMetrics{recorded: recorded, reversed: reversed, reconciled: reconciled, failed: failed}
}

// MovementRecorded cuenta un movimiento registrado.
func (m *LedgerMetrics) MovementRecorded(kind string) {
	if m == nil || m.recorded == nil {
		return
	}
	m.recorded.WithLabelValues(normalizeLabel(kind)).Inc()
}

// MovementReversed cuenta una reversa.
func (m *LedgerMetrics) MovementReversed(kind string) {
	if m == nil || m.reversed == nil {
		return
	}
	m.reversed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// LineReconciled cuenta una línea de factura (matched | created).
func (m *LedgerMetrics) LineReconciled(outcome string) {
	if m == nil || m.reconciled == nil {
		return
	}
	m.reconciled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// OperationFailed cuenta una operación revertida.
func (m *LedgerMetrics) OperationFailed(op string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(op)).Inc()
}

// HTTPMetrics latencia de las peticiones HTTP.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registra el histograma de peticiones en reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// Observe registra una petición. route es el patrón de la ruta, no el path concreto.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
