// Package metrics exposes Prometheus collectors for the tool ledgers and the HTTP layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics groups the collectors registered by the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	piecesTotal       prometheus.Counter
	scrapQuantity     *prometheus.GaugeVec
	toolsByCondition  *prometheus.GaugeVec
	httpRequestsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolwear_operations_total",
				Help: "Total number of ledger operations by outcome",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolwear_operation_duration_seconds",
				Help:    "Time taken by ledger operations",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"operation"},
		),
		piecesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toolwear_production_pieces_total",
			Help: "Pieces recorded through the production ledger",
		}),
		scrapQuantity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "toolwear_scrap_last_recorded",
				Help: "Last scrap quantity recorded per mold",
			},
			[]string{"mold_id"},
		),
		toolsByCondition: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "toolwear_active_tools",
				Help: "Active tools per condition at the last dashboard computation",
			},
			[]string{"condition"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolwear_http_requests_total",
				Help: "HTTP requests served by route and status code",
			},
			[]string{"method", "route", "code"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.operationsTotal, m.operationDuration, m.piecesTotal,
		m.scrapQuantity, m.toolsByCondition, m.httpRequestsTotal,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveOperation records the outcome and latency of one ledger operation.
func (m *Metrics) ObserveOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// AddPieces counts pieces accepted by the production ledger.
func (m *Metrics) AddPieces(pieces int64) {
	if m == nil {
		return
	}
	m.piecesTotal.Add(float64(pieces))
}

// SetScrap records the latest scrap quantity for a mold.
func (m *Metrics) SetScrap(moldID string, quantity int64) {
	if m == nil {
		return
	}
	m.scrapQuantity.WithLabelValues(moldID).Set(float64(quantity))
}

// SetConditionCounts publishes the active tool count per condition.
func (m *Metrics) SetConditionCounts(counts map[string]int) {
	if m == nil {
		return
	}
	for condition, n := range counts {
		m.toolsByCondition.WithLabelValues(condition).Set(float64(n))
	}
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(method, route, code string) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
}
