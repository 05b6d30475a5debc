// Package metrics expone contadores e histogramas Prometheus del almacén, del flujo de ventas y del login.
package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
)

const namespace = "supermercado"

var _ persistence.Recorder = (*Metrics)(nil)

// Metrics colectores sobre un registro propio (no el global), para que los tests creen instancias aisladas.
type Metrics struct {
	registry *prometheus.Registry

	statements   *prometheus.HistogramVec
	statementErr *prometheus.CounterVec
	units        *prometheus.HistogramVec
	sales        *prometheus.CounterVec
	saleAmount   prometheus.Counter
	logins       *prometheus.CounterVec
}

// New registra los colectores. Si db no es nil se exportan también sus estadísticas de pool.
func New(db *sql.DB) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(db, namespace))
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		statements: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "statement_duration_seconds",
			Help:      "Duración de las sentencias SQL por tabla y operación.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table", "op"}),
		statementErr: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "statement_errors_total",
			Help:      "Sentencias SQL fallidas por tabla y operación.",
		}, []string{"table", "op"}),
		units: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "unit_of_work_duration_seconds",
			Help:      "Duración de las unidades de trabajo por resultado.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		sales: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "transactions_total",
			Help:      "Ventas procesadas por resultado y fase de fallo.",
		}, []string{"result", "phase"}),
		saleAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "amount_total",
			Help:      "Suma de total_amount de las ventas confirmadas.",
		}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Intentos de login por rol y resultado.",
		}, []string{"role", "result"}),
	}
}

// ObserveStatement registra duración y error de una sentencia.
func (m *Metrics) ObserveStatement(table, op string, elapsed time.Duration, err error) {
	m.statements.WithLabelValues(table, op).Observe(elapsed.Seconds())
	if err != nil {
		m.statementErr.WithLabelValues(table, op).Inc()
	}
}

// ObserveUnitOfWork registra el resultado de una unidad de trabajo.
func (m *Metrics) ObserveUnitOfWork(outcome string, elapsed time.Duration) {
	m.units.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SaleCommitted cuenta una venta confirmada y suma su total.
func (m *Metrics) SaleCommitted(amount decimal.Decimal) {
	m.sales.WithLabelValues("committed", "").Inc()
	if amount.IsPositive() {
		m.saleAmount.Add(amount.InexactFloat64())
	}
}

// SaleFailed cuenta una venta rechazada o revertida en la fase indicada.
func (m *Metrics) SaleFailed(phase string) {
	m.sales.WithLabelValues("failed", phase).Inc()
}

// ObserveLogin cuenta un intento de login.
func (m *Metrics) ObserveLogin(role string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(role, result).Inc()
}

// Registry registro subyacente (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler endpoint de exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
