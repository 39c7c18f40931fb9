package errors

import (
	"fmt"
	"maps"
	"strings"
)

// Phase indicates where a failure was raised
type Phase string

const (
	PhaseWork     Phase = "work"     // guarded work
	PhaseHandler  Phase = "handler"  // failure handler
	PhaseCleanup  Phase = "cleanup"  // cleanup action
	PhaseDispatch Phase = "dispatch" // dispatcher itself
	PhaseRegistry Phase = "registry" // handler registration
	PhaseConfig   Phase = "config"   // policy loading
	PhaseWASM     Phase = "wasm"     // guest module calls
)

// Kind is the closed failure taxonomy
type Kind string

const (
	KindCustom              Kind = "custom"
	KindRangeViolation      Kind = "range_violation"
	KindUndeclaredReference Kind = "undeclared_reference"
	KindTypeMismatch        Kind = "type_mismatch"
	KindMalformedInput      Kind = "malformed_input"
	KindUnknown             Kind = "unknown"
)

var allKinds = []Kind{
	KindCustom,
	KindRangeViolation,
	KindUndeclaredReference,
	KindTypeMismatch,
	KindMalformedInput,
	KindUnknown,
}

// Kinds returns every member of the taxonomy in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k belongs to the taxonomy.
func (k Kind) Valid() bool {
	switch k {
	case KindCustom, KindRangeViolation, KindUndeclaredReference,
		KindTypeMismatch, KindMalformedInput, KindUnknown:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind resolves a kind name. Dashes and case are normalized, so
// "Range-Violation" parses as KindRangeViolation.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !k.Valid() {
		return KindUnknown, InvalidInput(PhaseConfig, fmt.Sprintf("unknown failure kind %q", s))
	}
	return k, nil
}

// Error is the structured failure type used throughout faultkit
type Error struct {
	Value   any
	Cause   error
	Context map[string]any
	Phase   Phase
	Kind    Kind
	Name    string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteByte(' ')
		b.WriteString(e.Name)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// FailureKind reports the explicit taxonomy tag.
func (e *Error) FailureKind() Kind {
	return e.Kind
}

// Is reports whether target matches this error. An empty Phase on the
// target matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && t.Phase != e.Phase {
			return false
		}
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Name sets a custom error name, e.g. "ValidationError"
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// With adds a context field
func (b *Builder) With(key string, v any) *Builder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]any)
	}
	b.err.Context[key] = v
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error. The builder may be reused; each
// call returns an independent copy.
func (b *Builder) Build() *Error {
	e := b.err
	if e.Path != nil {
		e.Path = append([]string(nil), e.Path...)
	}
	if e.Context != nil {
		e.Context = maps.Clone(e.Context)
	}
	return &e
}

// Convenience constructors for common failure patterns

// OutOfBounds creates an index out of bounds failure
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRangeViolation,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// OutOfRange creates a failure for a value outside [lo, hi]
func OutOfRange(phase Phase, path []string, value, lo, hi any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRangeViolation,
		Path:   path,
		Detail: fmt.Sprintf("value %v must be between %v and %v", value, lo, hi),
		Value:  value,
	}
}

// Undeclared creates a failure for access to an unbound name
func Undeclared(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUndeclaredReference,
		Detail: fmt.Sprintf("%s is not defined", name),
		Value:  name,
	}
}

// TypeMismatch creates a failure for an operation applied to the wrong shape
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// NotCallable creates a failure for calling a value that is not a function
func NotCallable(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("%s is not a function", name),
		Value:  name,
	}
}

// Malformed creates a failure for structurally invalid input
func Malformed(phase Phase, what, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedInput,
		Detail: fmt.Sprintf("malformed %s: %s", what, detail),
	}
}

// Custom creates a domain failure with its own name
func Custom(phase Phase, name, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCustom,
		Name:   name,
		Detail: detail,
	}
}

// InvalidInput creates a malformed input failure with a plain detail
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingDefaultHandlerError is returned when dispatch is attempted with a
// registry that has no default handler. It signals misconfiguration.
type MissingDefaultHandlerError struct {
	Registry string
}

func (e *MissingDefaultHandlerError) Error() string {
	if e.Registry == "" {
		return "[dispatch] missing default handler"
	}
	return fmt.Sprintf("[dispatch] missing default handler in registry %q", e.Registry)
}

// Is reports whether target matches this error type
func (e *MissingDefaultHandlerError) Is(target error) bool {
	_, ok := target.(*MissingDefaultHandlerError)
	return ok
}

// PanicError carries a value recovered from a panic during guarded work
// or handling. When the value is itself an error it is exposed through
// Unwrap, so tags and runtime error messages stay visible.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
