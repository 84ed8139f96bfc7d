package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module: approval outcomes,
// subdivision fan-out, and the duration of the approval critical path.
type Metrics struct {
	ApprovalsTotal      *prometheus.CounterVec
	RejectionsTotal     prometheus.Counter
	SubdivisionParcels  prometheus.Counter
	ApprovalDuration    prometheus.Histogram
	TransactionsCreated prometheus.Counter
	ParcelsRegistered   prometheus.Counter
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		ApprovalsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "foncier_approvals_total",
			Help: "Transaction approvals by outcome (approved, failed)",
		}, []string{"outcome"}),
		RejectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foncier_rejections_total",
			Help: "Transactions rejected by an agent",
		}),
		SubdivisionParcels: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foncier_subdivision_parcels_created_total",
			Help: "Heir parcels created by inheritance subdivisions",
		}),
		ApprovalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "foncier_approval_duration_seconds",
			Help:    "Duration of the approval unit of work",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TransactionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foncier_transactions_created_total",
			Help: "Transfer requests created",
		}),
		ParcelsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foncier_parcels_registered_total",
			Help: "Parcels registered outside subdivisions",
		}),
	}
}

// RecordApproval records an approval attempt outcome.
func (m *Metrics) RecordApproval(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.ApprovalsTotal.WithLabelValues(outcome).Inc()
	m.ApprovalDuration.Observe(time.Since(start).Seconds())
}

// RecordSubdivision records the number of heir parcels created.
func (m *Metrics) RecordSubdivision(parcels int) {
	if m == nil {
		return
	}
	m.SubdivisionParcels.Add(float64(parcels))
}

// RecordRejection records a rejection.
func (m *Metrics) RecordRejection() {
	if m == nil {
		return
	}
	m.RejectionsTotal.Inc()
}

// RecordTransactionCreated records a new transfer request.
func (m *Metrics) RecordTransactionCreated() {
	if m == nil {
		return
	}
	m.TransactionsCreated.Inc()
}

// RecordParcelRegistered records a directly registered parcel.
func (m *Metrics) RecordParcelRegistered() {
	if m == nil {
		return
	}
	m.ParcelsRegistered.Inc()
}
