// Package dispatch runs guarded work, classifies any failure it raises,
// hands the failure to the handler registered for its kind and guarantees
// that cleanup runs on every exit path.
//
// # Basic Usage
//
//	reg := dispatch.NewRegistry(dispatch.ReportingHandler(report))
//	reg.Register(errors.KindRangeViolation, dispatch.RecoverWith(-1))
//
//	res, err := dispatch.Run(ctx, reg, func(ctx context.Context) (any, error) {
//	    return lookup(arr, 1000)
//	}, closeFile)
//
// Run returns the work's value on success. On failure the handler decides:
// returning a value recovers (Result.Handled is true), returning an error
// repropagates it as a *FailureError carrying the classified Record.
//
// # Lifecycle
//
// Each Run moves through Idle, Running, Completed or Failed, CleanupRunning
// and ends in Returned or Repropagated. Once Running is entered cleanup is
// never skipped. A registry without a default handler is rejected with
// *errors.MissingDefaultHandlerError before work starts.
//
// # Thread Safety
//
// Registry is safe for concurrent use, but updates racing an in-flight Run
// decide which handler that Run sees. Configure registries at startup.
// Run executes work and handlers on the caller's goroutine; RunAll uses one
// goroutine per task.
package dispatch
