package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CommissionMetrics covers the order workflow and the settlement engine.
type CommissionMetrics struct {
	OrderTransitionsTotal      prometheus.CounterVec
	TransitionErrorsTotal      prometheus.CounterVec
	OrdersPostedAmountTotal    prometheus.CounterVec
	SettlementsCreatedTotal    prometheus.Counter
	SettlementsPostedTotal     prometheus.Counter
	SettlementsPostedAmount    prometheus.CounterVec
	SettlementsCancelledTotal  prometheus.Counter
	DuplicateEventsTotal       prometheus.Counter
	GenerationFailuresTotal    prometheus.Counter
	CollaboratorRetriesTotal   prometheus.CounterVec
	ReconciliationRunDuration  prometheus.Histogram
	ReconciliationDriftCatches prometheus.Counter
}

func NewCommissionMetrics() *CommissionMetrics {
	return &CommissionMetrics{
		OrderTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Order status transitions by from/to status",
			},
			[]string{"from", "to"},
		),
		TransitionErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transition_errors_total",
				Help: "Rejected or failed transition attempts by operation",
			},
			[]string{"operation"},
		),
		OrdersPostedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_posted_amount_total",
				Help: "Total base amount of posted orders",
			},
			[]string{"currency"},
		),
		SettlementsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlements_created_total",
				Help: "Settlement documents created",
			},
		),
		SettlementsPostedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlements_posted_total",
				Help: "Settlement documents posted",
			},
		),
		SettlementsPostedAmount: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_posted_amount_total",
				Help: "Total amount of posted settlement documents",
			},
			[]string{"currency"},
		),
		SettlementsCancelledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlements_cancelled_total",
				Help: "Settlement documents cancelled before posting",
			},
		),
		DuplicateEventsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_duplicate_events_total",
				Help: "Fulfillment events that were already handled",
			},
		),
		GenerationFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_generation_failures_total",
				Help: "Per-allocation settlement generation failures",
			},
		),
		CollaboratorRetriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collaborator_retries_total",
				Help: "Retried collaborator calls by service",
			},
			[]string{"service"},
		),
		ReconciliationRunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reconciliation_run_duration_seconds",
				Help:    "Duration of reconciliation sweeps",
				Buckets: prometheus.DefBuckets,
			},
		),
		ReconciliationDriftCatches: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciliation_drift_catches_total",
				Help: "Settlements advanced by reconciliation instead of events",
			},
		),
	}
}

func (m *CommissionMetrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *CommissionMetrics) RecordTransitionError(operation string) {
	if m == nil {
		return
	}
	m.TransitionErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *CommissionMetrics) RecordOrderPosted(currency string, amount float64) {
	if m == nil {
		return
	}
	m.OrdersPostedAmountTotal.WithLabelValues(currency).Add(amount)
}

func (m *CommissionMetrics) RecordSettlementCreated() {
	if m == nil {
		return
	}
	m.SettlementsCreatedTotal.Inc()
}

func (m *CommissionMetrics) RecordSettlementPosted(currency string, amount float64) {
	if m == nil {
		return
	}
	m.SettlementsPostedTotal.Inc()
	m.SettlementsPostedAmount.WithLabelValues(currency).Add(amount)
}

func (m *CommissionMetrics) RecordSettlementCancelled() {
	if m == nil {
		return
	}
	m.SettlementsCancelledTotal.Inc()
}

func (m *CommissionMetrics) RecordDuplicateEvent() {
	if m == nil {
		return
	}
	m.DuplicateEventsTotal.Inc()
}

func (m *CommissionMetrics) RecordGenerationFailure() {
	if m == nil {
		return
	}
	m.GenerationFailuresTotal.Inc()
}

func (m *CommissionMetrics) RecordCollaboratorRetry(service string) {
	if m == nil {
		return
	}
	m.CollaboratorRetriesTotal.WithLabelValues(service).Inc()
}

func (m *CommissionMetrics) ObserveReconciliationRun(seconds float64) {
	if m == nil {
		return
	}
	m.ReconciliationRunDuration.Observe(seconds)
}

func (m *CommissionMetrics) RecordDriftCatch() {
	if m == nil {
		return
	}
	m.ReconciliationDriftCatches.Inc()
}
