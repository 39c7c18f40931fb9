package policy

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/report"
	"github.com/wippyai/faultkit/taxonomy"
)

// RegistryName names registries built from configuration.
const RegistryName = "policy"

// Registry builds a dispatch registry from the configured actions. Every
// handler reports to rep before acting; rep may be nil.
func (c *Config) Registry(rep report.Reporter) (*dispatch.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	reg := dispatch.NewRegistry(handlerFor(c.Default, rep)).WithName(RegistryName)
	for _, name := range sortedKeys(c.Handlers) {
		kind, err := errors.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(kind, handlerFor(c.Handlers[name], rep)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func handlerFor(hc HandlerConfig, rep report.Reporter) dispatch.Handler {
	var act dispatch.Handler
	switch hc.Action {
	case ActionRecover:
		act = dispatch.RecoverWith(hc.Value)
	case ActionRepropagate:
		act = dispatch.Repropagate
	default:
		return report.Handler(rep)
	}
	if rep == nil {
		return act
	}
	return func(ctx context.Context, rec taxonomy.Record) (any, error) {
		rep.Report(ctx, rec)
		return act(ctx, rec)
	}
}

// Logger builds the zap logger selected by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, invalid([]string{"log", "level"}, "unknown log level %q", c.Log.Level)
	}

	var zc zap.Config
	if c.Log.Format == FormatJSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// Reporter combines the reporters enabled by configuration: always the
// logger and tracing, plus Prometheus counters registered with preg when
// metrics are enabled. A nil preg uses the default registerer.
func (c *Config) Reporter(log *zap.Logger, preg prometheus.Registerer) report.Reporter {
	reporters := []report.Reporter{report.Logger(log), report.Tracing()}
	if c.Metrics.Enabled {
		opts := []report.MetricsOption{report.WithNamespace(c.Metrics.Namespace)}
		if preg != nil {
			opts = append(opts, report.WithRegistry(preg))
		}
		reporters = append(reporters, report.Metrics(opts...))
	}
	return report.Multi(reporters...)
}
