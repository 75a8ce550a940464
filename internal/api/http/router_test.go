package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gatekeeper/internal/metrics"
	"github.com/dtroode/gatekeeper/internal/testutil"
)

type flag struct{ v atomic.Bool }

func (f *flag) Ready() bool { return f.v.Load() }

func newTestRouter(t *testing.T) (http.Handler, *flag, *metrics.Metrics) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ready := &flag{}
	return NewRouter(New(reg, ready, testutil.MakeNoopLogger())), ready, m
}

func TestHandler_Healthz(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandler_Readyz(t *testing.T) {
	r, ready, _ := newTestRouter(t)

	tests := []struct {
		name     string
		ready    bool
		wantCode int
	}{
		{name: "gateway down", ready: false, wantCode: http.StatusServiceUnavailable},
		{name: "gateway up", ready: true, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ready.v.Store(tt.ready)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_Metrics(t *testing.T) {
	r, _, m := newTestRouter(t)
	m.IncrementSessionsStarted()
	m.SetRosterEntries(42)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gatekeeper_sessions_started_total 1")
	assert.Contains(t, rec.Body.String(), "gatekeeper_roster_entries 42")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type storageHealth struct{ err error }

func (s *storageHealth) Health(context.Context) error { return s.err }

func TestHandler_Readyz_StorageHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	ready := &flag{}
	ready.v.Store(true)
	storage := &storageHealth{}
	r := NewRouter(New(reg, ready, testutil.MakeNoopLogger(), storage))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	storage.err = errors.New("connection refused")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "storage unavailable", rec.Body.String())
}
