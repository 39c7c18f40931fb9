package taxonomy

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/wippyai/faultkit/errors"
)

func TestClassify_TagIdentity(t *testing.T) {
	for _, kind := range errors.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			// Message deliberately points at a different kind
			err := errors.New(errors.PhaseWork, kind).Detail("x is not defined").Build()
			if got := Classify(err); got != kind {
				t.Errorf("Classify(tagged %s) = %s", kind, got)
			}

			wrapped := fmt.Errorf("outer: %w", err)
			if got := Classify(wrapped); got != kind {
				t.Errorf("Classify(wrapped tagged %s) = %s", kind, got)
			}
		})
	}
}

func TestClassify_TaggedCustomBeatsHeuristics(t *testing.T) {
	err := errors.Custom(errors.PhaseWork, "CustomError", "Division by zero is not allowed")
	if got := Classify(err); got != errors.KindCustom {
		t.Errorf("Classify = %s, want custom", got)
	}

	// The same message without a tag is a range violation
	if got := Classify(stderrors.New("Division by zero is not allowed")); got != errors.KindRangeViolation {
		t.Errorf("Classify(untagged) = %s, want range_violation", got)
	}
}

type badTag struct{}

func (badTag) Error() string            { return "index 3 out of range" }
func (badTag) FailureKind() errors.Kind { return "bogus" }

func TestClassify_InvalidTagFallsBackToMessage(t *testing.T) {
	if got := Classify(badTag{}); got != errors.KindRangeViolation {
		t.Errorf("Classify = %s, want range_violation", got)
	}
}

func TestClassify_Heuristics(t *testing.T) {
	tests := []struct {
		msg  string
		want errors.Kind
	}{
		// Range
		{"arr[1000] is out of bounds", errors.KindRangeViolation},
		{"Invalid array length", errors.KindRangeViolation},
		{"Maximum call stack size exceeded", errors.KindRangeViolation},
		{"Index out of range", errors.KindRangeViolation},
		{"toFixed() digits argument must be between 0 and 100", errors.KindRangeViolation},
		{"Argument must be a non-negative number", errors.KindRangeViolation},
		{"runtime error: index out of range [5] with length 3", errors.KindRangeViolation},
		{"runtime error: integer divide by zero", errors.KindRangeViolation},
		{"wasm error: out of bounds memory access", errors.KindRangeViolation},
		{"unbounded queue length exceeded", errors.KindRangeViolation},
		{"Maximum recursion depth exceeded", errors.KindRangeViolation},

		// Reference
		{"x is not defined", errors.KindUndeclaredReference},
		{"nonExistentVariable is not defined", errors.KindUndeclaredReference},
		{"use of undeclared identifier", errors.KindUndeclaredReference},
		{"unbound variable y", errors.KindUndeclaredReference},

		// Type
		{"x is not a function", errors.KindTypeMismatch},
		{"Cannot read property 'method' of null", errors.KindTypeMismatch},
		{"Cannot read properties of undefined (reading 'length')", errors.KindTypeMismatch},
		{"Cannot convert string to number", errors.KindTypeMismatch},
		{"runtime error: invalid memory address or nil pointer dereference", errors.KindTypeMismatch},
		{"interface conversion: interface {} is string, not int", errors.KindTypeMismatch},
		{"wasm error: indirect call type mismatch", errors.KindTypeMismatch},
		{"Arguments must be numbers", errors.KindTypeMismatch},
		{"Input must be a number", errors.KindTypeMismatch},

		// Malformed
		{"Unexpected token }", errors.KindMalformedInput},
		{"Unexpected end of input", errors.KindMalformedInput},
		{"URI malformed", errors.KindMalformedInput},
		{"invalid character 'x' looking for beginning of value", errors.KindMalformedInput},

		// Unknown
		{"something went wrong", errors.KindUnknown},
		{"context deadline exceeded", errors.KindUnknown},
		{"wasm error: unreachable", errors.KindUnknown},
		{"", errors.KindUnknown},
		{"orange arrangement", errors.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := Classify(stderrors.New(tt.msg)); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassify_NamePrefix(t *testing.T) {
	tests := []struct {
		msg  string
		want errors.Kind
	}{
		{"RangeError: Invalid array length", errors.KindRangeViolation},
		{"ReferenceError: greeting is not defined", errors.KindUndeclaredReference},
		// Prefix wins over the message body
		{"TypeError: undefinedVariable is not defined", errors.KindTypeMismatch},
		{"SyntaxError: Unexpected end of input", errors.KindMalformedInput},
		{"URIError: URI malformed", errors.KindMalformedInput},
		{"Uncaught TypeError: x is not a function", errors.KindTypeMismatch},
		{"InternalError: too much recursion", errors.KindRangeViolation},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := ClassifyMessage(tt.msg); got != tt.want {
				t.Errorf("ClassifyMessage(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != errors.KindUnknown {
		t.Errorf("Classify(nil) = %s, want unknown", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	msgs := []string{
		"arr[1000] is out of bounds",
		"x is not defined",
		"boom",
		"Unexpected token <",
	}
	for _, msg := range msgs {
		first := Classify(stderrors.New(msg))
		for i := 0; i < 50; i++ {
			if got := Classify(stderrors.New(msg)); got != first {
				t.Fatalf("Classify(%q) changed from %s to %s", msg, first, got)
			}
		}
	}
}

func TestClassifier_ExtraRules(t *testing.T) {
	c, err := NewClassifier(
		Rule{Kind: errors.KindCustom, Pattern: regexp.MustCompile(`^ValidationError\b`)},
		Rule{Kind: errors.KindMalformedInput, Contains: []string{"Bad JSON"}},
		// Shadows the built-in "not defined" heuristic for this phrase
		Rule{Kind: errors.KindCustom, Contains: []string{"feature flag"}},
	)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	tests := []struct {
		msg  string
		want errors.Kind
	}{
		{"ValidationError: email is required", errors.KindCustom},
		{"bad json in request body", errors.KindMalformedInput},
		{"feature flag beta is not defined", errors.KindCustom},
		{"x is not defined", errors.KindUndeclaredReference},
		// Name prefixes are consulted before extra rules
		{"TypeError: bad json", errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		if got := c.Classify(stderrors.New(tt.msg)); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}

	// Tags still win over extra rules
	tagged := errors.Undeclared(errors.PhaseWork, "ValidationError")
	if got := c.Classify(tagged); got != errors.KindUndeclaredReference {
		t.Errorf("Classify(tagged) = %s, want undeclared_reference", got)
	}
}

func TestNewClassifier_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"unknown kind", Rule{Kind: "syntax", Contains: []string{"x"}}},
		{"empty rule", Rule{Kind: errors.KindCustom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.rule)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindMalformedInput}) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}
