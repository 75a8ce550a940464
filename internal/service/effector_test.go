package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gatekeeper/internal/metrics"
	"github.com/dtroode/gatekeeper/internal/mocks"
	"github.com/dtroode/gatekeeper/internal/model"
	logtest "github.com/dtroode/gatekeeper/internal/testutil"
)

var testRoles = Roles{Unverified: "Unverified", Member: "Members"}

func newTestEffector(members model.MemberManager, ledger model.Ledger) (*Effector, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewEffector(members, ledger, testRoles, time.Second, m, logtest.MakeNoopLogger()), m
}

func TestEffector_Promote(t *testing.T) {
	members := mocks.NewMemberManager(t)
	members.On("RemoveRole", mock.Anything, "g1", "u1", "Unverified").Return(nil).Once()
	members.On("AddRole", mock.Anything, "g1", "u1", "Members").Return(nil).Once()

	e, m := newTestEffector(members, newFakeLedger())
	e.Promote(context.Background(), "g1", "u1")

	assert.Equal(t, float64(0), testutil.ToFloat64(m.EffectorFailures.WithLabelValues(string(model.ActionRemoveUnverified))))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.EffectorFailures.WithLabelValues(string(model.ActionAddMember))))
}

func TestEffector_Promote_FailuresAreIndependent(t *testing.T) {
	members := mocks.NewMemberManager(t)
	members.On("RemoveRole", mock.Anything, "g1", "u1", "Unverified").Return(errors.New("missing permissions")).Once()
	members.On("AddRole", mock.Anything, "g1", "u1", "Members").Return(nil).Once()

	e, m := newTestEffector(members, newFakeLedger())
	e.Promote(context.Background(), "g1", "u1")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EffectorFailures.WithLabelValues(string(model.ActionRemoveUnverified))))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.EffectorFailures.WithLabelValues(string(model.ActionAddMember))))
}

func TestEffector_Run_DetachedFromCancel(t *testing.T) {
	members := mocks.NewMemberManager(t)
	members.On("SetNickname", mock.Anything, "g1", "u1", "ann-CSE-123").
		Return(func(ctx context.Context, _, _, _ string) error { return ctx.Err() }).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, m := newTestEffector(members, newFakeLedger())
	e.Rename(ctx, "g1", "u1", "ann", "CSE", "9999999123")

	assert.Equal(t, float64(0), testutil.ToFloat64(m.EffectorFailures.WithLabelValues(string(model.ActionRename))))
}

func TestEffector_Admit(t *testing.T) {
	t.Run("unverified member is quarantined", func(t *testing.T) {
		members := mocks.NewMemberManager(t)
		members.On("AddRole", mock.Anything, "g1", "new", "Unverified").Return(nil).Once()

		e, _ := newTestEffector(members, newFakeLedger())
		e.Admit(context.Background(), "g1", "new")
	})

	t.Run("verified member is promoted", func(t *testing.T) {
		members := mocks.NewMemberManager(t)
		members.On("RemoveRole", mock.Anything, "g1", "back", "Unverified").Return(nil).Once()
		members.On("AddRole", mock.Anything, "g1", "back", "Members").Return(nil).Once()

		e, _ := newTestEffector(members, newFakeLedger("back"))
		e.Admit(context.Background(), "g1", "back")
	})

	t.Run("role failure is counted", func(t *testing.T) {
		members := mocks.NewMemberManager(t)
		members.On("AddRole", mock.Anything, "g1", "new", "Unverified").Return(model.ErrRoleNotFound).Once()

		e, m := newTestEffector(members, newFakeLedger())
		e.Admit(context.Background(), "g1", "new")

		assert.Equal(t, float64(1), testutil.ToFloat64(m.EffectorFailures.WithLabelValues(string(model.ActionAddUnverified))))
	})
}

func TestNickname(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		branch string
		phone  string
		want   string
	}{
		{name: "long phone", first: "ann", branch: "CSE", phone: "9999999123", want: "ann-CSE-123"},
		{name: "three digits", first: "raj", branch: "ECE", phone: "001", want: "raj-ECE-001"},
		{name: "short phone", first: "li", branch: "IT", phone: "42", want: "li-IT-42"},
		{name: "non-ascii digits", first: "ann", branch: "CSE", phone: "٩٩٩١٢٣", want: "ann-CSE-١٢٣"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nickname(tt.first, tt.branch, tt.phone)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
