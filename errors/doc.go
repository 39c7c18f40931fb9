// Package errors provides the structured failure types for faultkit.
//
// Failures are categorized by Phase (where the failure was raised) and Kind
// (the closed failure taxonomy). The Error type carries rich context: value
// path, offending value, custom error name, context fields and cause chain.
//
// Use the Builder for structured failure construction:
//
//	err := errors.New(errors.PhaseWork, errors.KindRangeViolation).
//		Path("orders", "items").
//		Value(1000).
//		Detail("index %d out of bounds", 1000).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseWork, path, 1000, 3)
//	err := errors.Undeclared(errors.PhaseWork, "userName")
//
// A tagged Error reports its Kind through FailureKind, which is what the
// taxonomy consults before falling back to message heuristics.
// All errors implement the standard error interface and support errors.Is/As.
package errors
