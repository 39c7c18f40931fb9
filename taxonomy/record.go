package taxonomy

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/wippyai/faultkit/errors"
)

// Record describes one classified failure. It is immutable once built:
// accessors hand out copies, and Records are passed by value.
type Record struct {
	cause    error
	context  map[string]any
	id       string
	kind     errors.Kind
	message  string
	tagged   bool
	panicked bool
}

// NewRecord classifies err with the default classifier and builds its record.
func NewRecord(err error, context map[string]any) Record {
	return defaultClassifier.Record(err, context)
}

// Record classifies err once and builds its record. Context fields carried
// by a tagged *errors.Error are merged first; the explicit context wins on
// key collisions.
func (c *Classifier) Record(err error, context map[string]any) Record {
	kind, tagged := c.classify(err)

	rec := Record{
		id:     uuid.NewString(),
		kind:   kind,
		cause:  err,
		tagged: tagged,
	}
	if err != nil {
		rec.message = err.Error()
	}

	var pe *errors.PanicError
	rec.panicked = stderrors.As(err, &pe)

	var fe *errors.Error
	if stderrors.As(err, &fe) && len(fe.Context) > 0 {
		rec.context = maps.Clone(fe.Context)
	}
	if len(context) > 0 {
		if rec.context == nil {
			rec.context = make(map[string]any, len(context))
		}
		maps.Copy(rec.context, context)
	}

	return rec
}

// ID is a unique identifier for correlating reports of the same failure.
func (r Record) ID() string { return r.id }

func (r Record) Kind() errors.Kind { return r.kind }

func (r Record) Message() string { return r.message }

// Cause returns the failure as it was raised.
func (r Record) Cause() error { return r.cause }

// Tagged reports whether the kind came from an explicit tag rather than heuristics.
func (r Record) Tagged() bool { return r.tagged }

// Panicked reports whether the failure was recovered from a panic.
func (r Record) Panicked() bool { return r.panicked }

// Context returns a copy of the context fields.
func (r Record) Context() map[string]any {
	return maps.Clone(r.context)
}

// Value returns a single context field.
func (r Record) Value(key string) (any, bool) {
	v, ok := r.context[key]
	return v, ok
}

// Err returns the original failure carrying the classified kind, for
// handlers that choose to repropagate it.
func (r Record) Err() error {
	return &recordError{rec: r}
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s: %s", r.id, r.kind, r.message)
}

// MarshalJSON renders the record for CLI and log output.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Context  map[string]any `json:"context,omitempty"`
		ID       string         `json:"id"`
		Kind     errors.Kind    `json:"kind"`
		Message  string         `json:"message"`
		Tagged   bool           `json:"tagged"`
		Panicked bool           `json:"panicked"`
	}{
		Context:  r.context,
		ID:       r.id,
		Kind:     r.kind,
		Message:  r.message,
		Tagged:   r.tagged,
		Panicked: r.panicked,
	})
}

type recordError struct {
	rec Record
}

func (e *recordError) Error() string {
	return e.rec.message
}

func (e *recordError) Unwrap() error {
	return e.rec.cause
}

func (e *recordError) FailureKind() errors.Kind {
	return e.rec.kind
}
