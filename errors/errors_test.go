package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseWork,
				Kind:   KindRangeViolation,
				Path:   []string{"order", "items"},
				Detail: "index 1000 out of bounds",
			},
			contains: []string{"[work]", "range_violation", "order.items", "index 1000 out of bounds"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseHandler,
				Kind:  KindUnknown,
			},
			contains: []string{"[handler]", "unknown"},
		},
		{
			name: "named custom error",
			err:  Custom(PhaseWork, "ValidationError", "email is required"),
			contains: []string{
				"custom ValidationError", "email is required",
			},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindMalformedInput,
				Detail: "bad yaml",
				Cause:  errors.New("line 3: mapping values are not allowed"),
			},
			contains: []string{"[config]", "malformed_input", "bad yaml", "caused by", "line 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseWork, KindTypeMismatch, cause, "convert")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause in chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseWork,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseWork, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseHandler, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseWork, Kind: KindRangeViolation}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Kind: KindTypeMismatch}) {
		t.Error("empty target phase should match any phase")
	}
}

func TestError_FailureKind(t *testing.T) {
	var tagged interface{ FailureKind() Kind } = OutOfBounds(PhaseWork, nil, 5, 2)
	if tagged.FailureKind() != KindRangeViolation {
		t.Errorf("FailureKind = %v, want %v", tagged.FailureKind(), KindRangeViolation)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	b := New(PhaseWork, KindCustom).
		Name("PaymentError").
		Path("payment", "amount").
		Value(42).
		Cause(cause).
		With("currency", "EUR").
		Detail("amount %d exceeds %s limit", 42, "daily")
	err := b.Build()

	if err.Phase != PhaseWork {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseWork)
	}
	if err.Kind != KindCustom {
		t.Errorf("Kind = %v, want %v", err.Kind, KindCustom)
	}
	if err.Name != "PaymentError" {
		t.Errorf("Name = %q, want PaymentError", err.Name)
	}
	if len(err.Path) != 2 || err.Path[0] != "payment" || err.Path[1] != "amount" {
		t.Errorf("Path = %v, want [payment amount]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Context["currency"] != "EUR" {
		t.Errorf("Context = %v, want currency=EUR", err.Context)
	}
	if err.Detail != "amount 42 exceeds daily limit" {
		t.Errorf("Detail = %q", err.Detail)
	}

	// Builds are independent of later builder mutation
	b.With("currency", "USD")
	if err.Context["currency"] != "EUR" {
		t.Error("built error context changed after builder reuse")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		kind   Kind
		detail string
	}{
		{"OutOfBounds", OutOfBounds(PhaseWork, []string{"arr"}, 1000, 3), KindRangeViolation, "index 1000 out of bounds (length 3)"},
		{"OutOfRange", OutOfRange(PhaseWork, nil, 101, 0, 100), KindRangeViolation, "value 101 must be between 0 and 100"},
		{"Undeclared", Undeclared(PhaseWork, "userName"), KindUndeclaredReference, "userName is not defined"},
		{"TypeMismatch", TypeMismatch(PhaseWork, nil, "number", "string"), KindTypeMismatch, "expected number, got string"},
		{"NotCallable", NotCallable(PhaseWork, "obj.method"), KindTypeMismatch, "obj.method is not a function"},
		{"Malformed", Malformed(PhaseWork, "json", "unexpected end of input"), KindMalformedInput, "malformed json: unexpected end of input"},
		{"Custom", Custom(PhaseWork, "CustomError", "Division by zero is not allowed"), KindCustom, "Division by zero is not allowed"},
		{"InvalidInput", InvalidInput(PhaseRegistry, "nil handler"), KindMalformedInput, "nil handler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Detail != tt.detail {
				t.Errorf("Detail = %q, want %q", tt.err.Detail, tt.detail)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 6 {
		t.Fatalf("expected 6 kinds, got %d", len(kinds))
	}
	for _, k := range kinds {
		if !k.Valid() {
			t.Errorf("kind %q should be valid", k)
		}
	}

	kinds[0] = "mutated"
	if Kinds()[0] != KindCustom {
		t.Error("Kinds should return a copy")
	}

	if Kind("reference").Valid() {
		t.Error("unlisted kind should not be valid")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"range_violation", KindRangeViolation, false},
		{"Range-Violation", KindRangeViolation, false},
		{" type_mismatch ", KindTypeMismatch, false},
		{"unknown", KindUnknown, false},
		{"syntax", KindUnknown, true},
		{"", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if err != nil && !errors.Is(err, &Error{Phase: PhaseConfig, Kind: KindMalformedInput}) {
				t.Errorf("ParseKind error should be a config malformed_input failure, got %v", err)
			}
		})
	}
}

func TestMissingDefaultHandlerError(t *testing.T) {
	t.Run("unnamed", func(t *testing.T) {
		err := &MissingDefaultHandlerError{}
		if !strings.Contains(err.Error(), "missing default handler") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("named", func(t *testing.T) {
		err := &MissingDefaultHandlerError{Registry: "billing"}
		if !strings.Contains(err.Error(), `"billing"`) {
			t.Errorf("message should name the registry, got %q", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		var err error = &MissingDefaultHandlerError{Registry: "x"}
		if !errors.Is(err, &MissingDefaultHandlerError{}) {
			t.Error("errors.Is should match MissingDefaultHandlerError")
		}
	})
}

func TestPanicError(t *testing.T) {
	t.Run("error value", func(t *testing.T) {
		inner := Undeclared(PhaseWork, "x")
		err := &PanicError{Value: inner}
		if !strings.HasPrefix(err.Error(), "panic: ") {
			t.Errorf("unexpected message %q", err.Error())
		}
		var tagged *Error
		if !errors.As(err, &tagged) || tagged.Kind != KindUndeclaredReference {
			t.Error("panic value should be reachable through Unwrap")
		}
	})

	t.Run("plain value", func(t *testing.T) {
		err := &PanicError{Value: 42}
		if err.Error() != "panic: 42" {
			t.Errorf("Error() = %q, want 'panic: 42'", err.Error())
		}
		if err.Unwrap() != nil {
			t.Error("non-error panic value should not unwrap")
		}
	})
}
