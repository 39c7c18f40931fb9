package report

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/taxonomy"
)

type logReporter struct {
	log *zap.Logger
}

// Logger reports failures as structured log entries. Unknown failures are
// logged at error level, everything else at warn.
func Logger(log *zap.Logger) Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &logReporter{log: log}
}

func (l *logReporter) Report(_ context.Context, rec taxonomy.Record) {
	level := zapcore.WarnLevel
	if rec.Kind() == errors.KindUnknown {
		level = zapcore.ErrorLevel
	}

	ce := l.log.Check(level, "failure")
	if ce == nil {
		return
	}
	ce.Write(Fields(rec)...)
}

// Fields renders rec as zap fields. Context keys are emitted in sorted
// order under a "context" namespace.
func Fields(rec taxonomy.Record) []zap.Field {
	fields := []zap.Field{
		zap.String("failure_id", rec.ID()),
		zap.String("kind", string(rec.Kind())),
		zap.String("message", rec.Message()),
		zap.Bool("tagged", rec.Tagged()),
		zap.Bool("panicked", rec.Panicked()),
	}
	if cause := rec.Cause(); cause != nil {
		fields = append(fields, zap.NamedError("cause", cause))
	}

	ctx := rec.Context()
	if len(ctx) == 0 {
		return fields
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields = append(fields, zap.Namespace("context"))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, ctx[k]))
	}
	return fields
}
