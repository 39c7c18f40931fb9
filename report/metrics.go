package report

import (
	"context"
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/faultkit/taxonomy"
)

// MetricsConfig configures the Prometheus reporter.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "faultkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus reporter.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "faultkit",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// MetricsReporter counts failures by kind.
type MetricsReporter struct {
	failures *prometheus.CounterVec
	panics   *prometheus.CounterVec
}

// Metrics creates a reporter exporting failures_total{kind} and
// panics_total{kind}. Registering twice against the same registry reuses
// the collectors already registered.
func Metrics(opts ...MetricsOption) *MetricsReporter {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	m := &MetricsReporter{
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "failures_total",
			Help:        "Total number of classified failures by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "panics_total",
			Help:        "Total number of recovered panics by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}

	m.failures = register(config.Registry, m.failures)
	m.panics = register(config.Registry, m.panics)
	return m
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *MetricsReporter) Report(_ context.Context, rec taxonomy.Record) {
	kind := string(rec.Kind())
	m.failures.WithLabelValues(kind).Inc()
	if rec.Panicked() {
		m.panics.WithLabelValues(kind).Inc()
	}
}

// Failures exposes the failure counter, mainly for tests.
func (m *MetricsReporter) Failures() *prometheus.CounterVec {
	return m.failures
}
