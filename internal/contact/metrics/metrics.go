package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contact module.
// Tracks write outcomes, uniqueness conflicts and export cache effectiveness.
type Metrics struct {
	ContactsWritten   *prometheus.CounterVec
	Conflicts         *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ExportCacheHits   prometheus.Counter
	ExportCacheMisses prometheus.Counter
}

// New creates the contact metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContactsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_written_total",
			Help: "Total number of successful contact writes by operation",
		}, []string{"op"}),
		Conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_uniqueness_conflicts_total",
			Help: "Total number of rejected writes by the field that collided",
		}, []string{"field"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contacts_operation_duration_seconds",
			Help:    "Duration of contact service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		ExportCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "contacts_export_cache_hits_total",
			Help: "Total number of CSV exports served from cache",
		}),
		ExportCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "contacts_export_cache_misses_total",
			Help: "Total number of CSV exports rendered from the store",
		}),
	}
}

func (m *Metrics) IncrementWritten(op string) {
	m.ContactsWritten.WithLabelValues(op).Inc()
}

func (m *Metrics) IncrementConflict(field string) {
	m.Conflicts.WithLabelValues(field).Inc()
}

// ObserveOperation records the duration of op.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementExportCache(hit bool) {
	if hit {
		m.ExportCacheHits.Inc()
		return
	}
	m.ExportCacheMisses.Inc()
}
