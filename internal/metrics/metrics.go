package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dtroode/gatekeeper/internal/model"
)

// Metrics holds the verification counters and gauges.
type Metrics struct {
	SessionsStarted  prometheus.Counter
	SessionsFinished *prometheus.CounterVec
	StartsRejected   *prometheus.CounterVec
	EffectorFailures *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	VerifiedUsers    prometheus.Gauge
	RosterEntries    prometheus.Gauge
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_sessions_started_total",
			Help: "Total number of verification sessions started",
		}),
		SessionsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_sessions_finished_total",
			Help: "Total number of verification sessions finished, by outcome",
		}, []string{"outcome"}),
		StartsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_session_starts_rejected_total",
			Help: "Total number of rejected verification starts, by reason",
		}, []string{"reason"}),
		EffectorFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_effector_failures_total",
			Help: "Total number of failed role or nickname changes, by action",
		}, []string{"action"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "gatekeeper_active_sessions",
			Help: "Current number of live verification sessions",
		}),
		VerifiedUsers: f.NewGauge(prometheus.GaugeOpts{
			Name: "gatekeeper_verified_users",
			Help: "Current number of users in the verified ledger",
		}),
		RosterEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "gatekeeper_roster_entries",
			Help: "Number of roster entries loaded at startup",
		}),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementSessionsFinished(outcome model.Outcome) {
	m.SessionsFinished.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) IncrementStartsRejected(reason string) {
	m.StartsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementEffectorFailures(action model.EffectorAction) {
	m.EffectorFailures.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

func (m *Metrics) SetVerifiedUsers(count int) {
	m.VerifiedUsers.Set(float64(count))
}

func (m *Metrics) SetRosterEntries(count int) {
	m.RosterEntries.Set(float64(count))
}
