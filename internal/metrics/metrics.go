package metrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feral-file/ff-author-checker/internal/domain"
)

const (
	RUN_RESULT_SUCCESS = "success"
	RUN_RESULT_FAILURE = "failure"
)

// Recorder records check run metrics
//
//go:generate mockgen -source=metrics.go -destination=../mocks/metrics.go -package=mocks -mock_names=Recorder=MockRecorder
type Recorder interface {
	// ObserveOutcome counts a single association check by status
	ObserveOutcome(status domain.CheckStatus)

	// ObserveRun records the duration and result of a whole run
	ObserveRun(duration time.Duration, err error)

	// ObservePublishFailure counts revocation events that could not be published
	ObservePublishFailure()
}

// Metrics is the Prometheus backed Recorder
type Metrics struct {
	registry        *prometheus.Registry
	outcomes        *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	publishFailures prometheus.Counter
}

// New creates the check metrics and registers them on registry
// A nil registry gets a fresh one
func New(namespace, subsystem string, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace, subsystem = fmtFixer(namespace), fmtFixer(subsystem)

	m := &Metrics{
		registry: registry,
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "association_checks_total",
			Help:      "Author association checks by outcome status",
		}, []string{"status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Check runs by result",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of check runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"result"}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "revocation_publish_failures_total",
			Help:      "Revocation events that could not be published",
		}),
	}

	// Initialise label values so the series exist before the first run
	for _, status := range []domain.CheckStatus{
		domain.CheckStatusActive,
		domain.CheckStatusNoGrant,
		domain.CheckStatusRevoked,
		domain.CheckStatusFailed,
	} {
		m.outcomes.WithLabelValues(string(status)).Add(0)
	}
	m.runs.WithLabelValues(RUN_RESULT_SUCCESS).Add(0)
	m.runs.WithLabelValues(RUN_RESULT_FAILURE).Add(0)

	registry.MustRegister(m.outcomes, m.runs, m.runDuration, m.publishFailures)
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		// Several recorders may share a registry; the Go collector is registered once
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			panic(err)
		}
	}

	return m
}

func (m *Metrics) ObserveOutcome(status domain.CheckStatus) {
	m.outcomes.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveRun(duration time.Duration, err error) {
	result := RUN_RESULT_SUCCESS
	if err != nil {
		result = RUN_RESULT_FAILURE
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *Metrics) ObservePublishFailure() {
	m.publishFailures.Inc()
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Server returns an HTTP server exposing the metrics on addr
func (m *Metrics) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// GinHandler returns the exposition handler for a gin router
func (m *Metrics) GinHandler() gin.HandlerFunc {
	h := m.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func fmtFixer(in string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(in)
}

// Nop is a Recorder that records nothing
type Nop struct{}

func (Nop) ObserveOutcome(domain.CheckStatus) {}
func (Nop) ObserveRun(time.Duration, error) {}
func (Nop) ObservePublishFailure() {}
