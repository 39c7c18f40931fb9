// Package faultkit classifies raised failures into a fixed taxonomy and
// dispatches them to handlers registered per kind, running cleanup exactly
// once on every exit path.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	faultkit/
//	├── errors/        Failure kinds, tagged errors and constructors
//	├── taxonomy/      Classification rules and immutable failure records
//	├── dispatch/      Handler registry, Run, Do and RunAll
//	├── report/        zap, Prometheus and OpenTelemetry sinks
//	├── policy/        koanf configuration building registries and classifiers
//	├── wasmguard/     WebAssembly exports as guarded work (wazero)
//	└── cmd/faultkit/  Command line interface
//
// # Quick Start
//
//	reg := dispatch.NewRegistry(report.Handler(report.Logger(log)))
//	_ = reg.Register(errors.KindRangeViolation, dispatch.RecoverWith(-1))
//
//	res, err := dispatch.Run(ctx, reg, work, cleanup)
//	if err != nil {
//	    // the handler repropagated; err carries the classified kind
//	}
//
// # Classification
//
// A failure's kind is decided in this order, first match wins:
//
//   - an explicit tag: any error in the chain with a FailureKind method
//   - an error name prefix such as "RangeError:" or "TypeError:"
//   - extra rules supplied to taxonomy.NewClassifier
//   - built-in message heuristics
//   - unknown
//
// # Cleanup
//
// dispatch.Run calls cleanup exactly once whenever work was started,
// after the handler has settled, whether work completed, failed or
// panicked and whether the handler recovered or failed. A registry
// without a default handler is rejected before work starts.
package faultkit
