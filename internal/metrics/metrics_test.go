package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gatekeeper/internal/model"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementSessionsStarted()
	m.IncrementSessionsStarted()
	m.IncrementSessionsFinished(model.OutcomeVerified)
	m.IncrementSessionsFinished(model.OutcomeTimeout)
	m.IncrementSessionsFinished(model.OutcomeTimeout)
	m.IncrementStartsRejected("already_verified")
	m.IncrementEffectorFailures(model.ActionRename)
	m.SetActiveSessions(3)
	m.SetVerifiedUsers(10)
	m.SetRosterEntries(120)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsFinished.WithLabelValues("verified")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsFinished.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StartsRejected.WithLabelValues("already_verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EffectorFailures.WithLabelValues("rename")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.VerifiedUsers))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.RosterEntries))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 7)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
