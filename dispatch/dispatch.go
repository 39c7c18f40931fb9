package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/taxonomy"
)

// Work is a unit of guarded computation.
type Work func(ctx context.Context) (any, error)

// Cleanup runs exactly once per Run that reaches the Running state.
type Cleanup func()

// State is a step of a single Run.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCleanupRunning
	StateReturned
	StateRepropagated
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateRunning:        "running",
	StateCompleted:      "completed",
	StateFailed:         "failed",
	StateCleanupRunning: "cleanup_running",
	StateReturned:       "returned",
	StateRepropagated:   "repropagated",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s ends a Run.
func (s State) Terminal() bool {
	return s == StateReturned || s == StateRepropagated
}

// Result is the outcome of a Run that did not repropagate.
type Result struct {
	Value any
	// Record is set when work failed and a handler recovered.
	Record *taxonomy.Record
	// Handled marks a recovered failure, including handlers that return nil.
	Handled bool
}

// Failed reports whether the work raised a failure.
func (r Result) Failed() bool {
	return r.Record != nil
}

// FailureError is returned by Run when the handler repropagates. It keeps
// the classified record of the original failure and wraps the error the
// handler raised.
type FailureError struct {
	Err    error
	Record taxonomy.Record
}

func (e *FailureError) Error() string {
	return "[" + string(e.Record.Kind()) + "] " + e.Err.Error()
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

// FailureKind reports the classified kind, so nested dispatch keeps it.
func (e *FailureError) FailureKind() errors.Kind {
	return e.Record.Kind()
}

// Option configures a single Run.
type Option func(*options)

type options struct {
	classifier *taxonomy.Classifier
	context    map[string]any
	observer   func(State)
}

// WithClassifier classifies failures with c instead of the default classifier.
func WithClassifier(c *taxonomy.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

// WithContext attaches context fields to the failure record.
func WithContext(fields map[string]any) Option {
	return func(o *options) {
		o.context = fields
	}
}

// WithObserver receives every state the Run enters, in order. With RunAll
// the observer is called from several goroutines.
func WithObserver(fn func(State)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func newOptions(opts []Option) *options {
	o := &options{classifier: taxonomy.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.classifier == nil {
		o.classifier = taxonomy.Default()
	}
	return o
}

func (o *options) enter(s State) {
	if o.observer != nil {
		o.observer(s)
	}
}

// Run executes work under reg. A registry without a default handler is
// rejected before work runs, and cleanup is not called in that case.
// Otherwise cleanup runs exactly once, after the handler has settled.
func Run(ctx context.Context, reg *Registry, work Work, cleanup Cleanup, opts ...Option) (res Result, err error) {
	o := newOptions(opts)
	o.enter(StateIdle)

	if err := reg.checkDefault(); err != nil {
		return Result{}, err
	}
	if work == nil {
		return Result{}, errors.InvalidInput(errors.PhaseDispatch, "nil work")
	}

	o.enter(StateRunning)
	defer func() {
		o.enter(StateCleanupRunning)
		if cleanup != nil {
			cleanup()
		}
		if err != nil {
			o.enter(StateRepropagated)
		} else {
			o.enter(StateReturned)
		}
	}()

	value, werr := invokeWork(ctx, work)
	if werr == nil {
		o.enter(StateCompleted)
		return Result{Value: value}, nil
	}

	rec := o.classifier.Record(werr, o.context)
	o.enter(StateFailed)

	handler, dedicated := reg.Lookup(rec.Kind())
	log := Logger()
	log.Debug("dispatching failure",
		zap.String("registry", reg.Name()),
		zap.String("failure_id", rec.ID()),
		zap.String("kind", string(rec.Kind())),
		zap.Bool("tagged", rec.Tagged()),
		zap.Bool("default_handler", !dedicated))

	hv, herr := invokeHandler(ctx, handler, rec)
	if herr != nil {
		log.Debug("handler repropagated failure",
			zap.String("failure_id", rec.ID()),
			zap.String("kind", string(rec.Kind())),
			zap.Error(herr))
		return Result{Record: &rec}, &FailureError{Record: rec, Err: herr}
	}

	return Result{Value: hv, Record: &rec, Handled: true}, nil
}

// Do is Run for work producing a T. A recovered value that is not a T is
// reported as a type mismatch; a nil recovered value yields T's zero value.
func Do[T any](ctx context.Context, reg *Registry, work func(ctx context.Context) (T, error), cleanup Cleanup, opts ...Option) (T, error) {
	var zero T
	if work == nil {
		return zero, errors.InvalidInput(errors.PhaseDispatch, "nil work")
	}

	res, err := Run(ctx, reg, func(ctx context.Context) (any, error) {
		return work(ctx)
	}, cleanup, opts...)
	if err != nil {
		return zero, err
	}
	if res.Value == nil {
		return zero, nil
	}
	v, ok := res.Value.(T)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseDispatch, nil,
			fmt.Sprintf("%T", zero), fmt.Sprintf("%T", res.Value))
	}
	return v, nil
}

func invokeWork(ctx context.Context, work Work) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = &errors.PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return work(ctx)
}

func invokeHandler(ctx context.Context, h Handler, rec taxonomy.Record) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = errors.Wrap(errors.PhaseHandler, rec.Kind(),
				&errors.PanicError{Value: r, Stack: string(debug.Stack())},
				"handler panicked")
		}
	}()
	return h(ctx, rec)
}
