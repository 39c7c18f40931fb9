package dispatch

import (
	"context"

	"github.com/wippyai/faultkit/taxonomy"
)

// ReportingHandler returns a handler that passes each record to report
// and marks the failure handled. It is the usual default handler.
func ReportingHandler(report func(context.Context, taxonomy.Record)) Handler {
	return func(ctx context.Context, rec taxonomy.Record) (any, error) {
		if report != nil {
			report(ctx, rec)
		}
		return nil, nil
	}
}

// RecoverWith returns a handler that substitutes v for the failed result.
func RecoverWith(v any) Handler {
	return func(context.Context, taxonomy.Record) (any, error) {
		return v, nil
	}
}

// Repropagate is a Handler that re-raises the original failure with its
// classified kind attached.
func Repropagate(_ context.Context, rec taxonomy.Record) (any, error) {
	return nil, rec.Err()
}
