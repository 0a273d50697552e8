package rolesync

import (
	"context"

	"rank-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records reconciliation activity. It implements reconcile.OutcomeObserver.
type Metrics struct {
	// Passes counts guild passes by trigger and result ("ok" or "error").
	Passes *prometheus.CounterVec

	// PassDuration observes how long full guild passes take.
	PassDuration *prometheus.HistogramVec

	// Members counts reconciled members by trigger and branch.
	Members *prometheus.CounterVec

	// Failures counts failed mutations by operation.
	Failures *prometheus.CounterVec
}

// NewMetrics registers the sync metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Passes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranksync_passes_total",
			Help: "Total guild reconciliation passes by trigger and result",
		}, []string{"trigger", "result"}),

		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ranksync_pass_duration_seconds",
			Help:    "Duration of full guild reconciliation passes",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"trigger"}),

		Members: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranksync_members_reconciled_total",
			Help: "Total reconciled members by trigger and resolver branch",
		}, []string{"trigger", "branch"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranksync_mutation_failures_total",
			Help: "Total failed member mutations by operation",
		}, []string{"op"}),
	}
}

// MemberReconciled counts one member outcome.
func (m *Metrics) MemberReconciled(_ context.Context, _ string, trigger reconcile.Trigger, outcome reconcile.Outcome) error {
	if m == nil {
		return nil
	}
	branch := string(outcome.Branch)
	if branch == "" {
		branch = "none"
	}
	m.Members.WithLabelValues(string(trigger), branch).Inc()
	for _, f := range outcome.Failures {
		m.Failures.WithLabelValues(string(f.Op)).Inc()
	}
	return nil
}

// PassFinished records a completed or failed guild pass.
func (m *Metrics) PassFinished(stats reconcile.Stats, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Passes.WithLabelValues(string(stats.Trigger), result).Inc()
	if stats.Duration > 0 {
		m.PassDuration.WithLabelValues(string(stats.Trigger)).Observe(stats.Duration.Seconds())
	}
}
