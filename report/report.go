package report

import (
	"context"

	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/taxonomy"
)

// Reporter consumes a classified failure. Implementations must be safe
// for concurrent use; RunAll reports from several goroutines.
type Reporter interface {
	Report(ctx context.Context, rec taxonomy.Record)
}

// Func adapts a function to Reporter.
type Func func(ctx context.Context, rec taxonomy.Record)

func (f Func) Report(ctx context.Context, rec taxonomy.Record) {
	f(ctx, rec)
}

type multi []Reporter

func (m multi) Report(ctx context.Context, rec taxonomy.Record) {
	for _, r := range m {
		r.Report(ctx, rec)
	}
}

// Multi reports to each non-nil reporter in order.
func Multi(reporters ...Reporter) Reporter {
	out := make(multi, 0, len(reporters))
	for _, r := range reporters {
		if r == nil {
			continue
		}
		if m, ok := r.(multi); ok {
			out = append(out, m...)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Handler returns a dispatch handler that reports each failure to r and
// marks it handled.
func Handler(r Reporter) dispatch.Handler {
	if r == nil {
		return dispatch.ReportingHandler(nil)
	}
	return dispatch.ReportingHandler(r.Report)
}
