// Package report provides sinks for classified failures.
//
// A Reporter receives every taxonomy.Record a default handler observes.
// The sinks here cover structured logging (zap), Prometheus counters and
// OpenTelemetry spans; Multi fans a record out to several of them:
//
//	rep := report.Multi(
//	    report.Logger(log),
//	    report.Metrics(report.WithRegistry(reg)),
//	    report.Tracing(),
//	)
//	registry := dispatch.NewRegistry(report.Handler(rep))
package report
