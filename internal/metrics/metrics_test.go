package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/metrics"
)

func TestMetrics_Observe(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New("author-checker", "checks", registry)

	m.ObserveOutcome(domain.CheckStatusRevoked)
	m.ObserveOutcome(domain.CheckStatusRevoked)
	m.ObserveOutcome(domain.CheckStatusFailed)
	m.ObserveRun(2*time.Second, nil)
	m.ObserveRun(time.Second, errors.New("boom"))
	m.ObservePublishFailure()

	expected := `
# HELP author_checker_checks_association_checks_total Author association checks by outcome status
# TYPE author_checker_checks_association_checks_total counter
author_checker_checks_association_checks_total{status="active"} 0
author_checker_checks_association_checks_total{status="failed"} 1
author_checker_checks_association_checks_total{status="no_grant"} 0
author_checker_checks_association_checks_total{status="revoked"} 2
# HELP author_checker_checks_runs_total Check runs by result
# TYPE author_checker_checks_runs_total counter
author_checker_checks_runs_total{result="failure"} 1
author_checker_checks_runs_total{result="success"} 1
# HELP author_checker_checks_revocation_publish_failures_total Revocation events that could not be published
# TYPE author_checker_checks_revocation_publish_failures_total counter
author_checker_checks_revocation_publish_failures_total 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"author_checker_checks_association_checks_total",
		"author_checker_checks_runs_total",
		"author_checker_checks_revocation_publish_failures_total",
	)
	assert.NoError(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New("author_checker", "checks", nil)
	m.ObserveOutcome(domain.CheckStatusActive)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `author_checker_checks_association_checks_total{status="active"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetrics_SharedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(collectors.NewGoCollector()))

	assert.NotPanics(t, func() {
		metrics.New("author_checker", "worker", registry)
		metrics.New("author_checker", "api", registry)
	})

	families, err := registry.Gather()
	require.NoError(t, err)
	goroutines := 0
	for _, family := range families {
		if family.GetName() == "go_goroutines" {
			goroutines++
		}
	}
	assert.Equal(t, 1, goroutines)
}

func TestMetrics_Server(t *testing.T) {
	m := metrics.New("author_checker", "worker", nil)
	m.ObserveOutcome(domain.CheckStatusRevoked)

	srv := m.Server(":9091")
	assert.Equal(t, ":9091", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `author_checker_worker_association_checks_total{status="revoked"} 1`)
}

func TestNop(t *testing.T) {
	var r metrics.Recorder = metrics.Nop{}
	assert.NotPanics(t, func() {
		r.ObserveOutcome(domain.CheckStatusActive)
		r.ObserveRun(time.Second, nil)
		r.ObservePublishFailure()
	})
}
