package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ftsi"

// Index operation Prometheus metrics.
var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of index operations",
		},
		[]string{"operation", "entity", "status"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Index operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	DocumentsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Total documents committed to catalogs",
		},
		[]string{"entity"},
	)

	DocumentsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_deleted_total",
			Help:      "Total documents removed from catalogs",
		},
		[]string{"entity"},
	)
)

var registerOnce sync.Once

// Register registers all ftsi metrics with the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			OperationsTotal,
			OperationDuration,
			DocumentsIndexedTotal,
			DocumentsDeletedTotal,
		)
	})
}

// ObserveOperation records the outcome and duration of one index operation.
func ObserveOperation(op, entity string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	OperationsTotal.WithLabelValues(op, entity, status).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
