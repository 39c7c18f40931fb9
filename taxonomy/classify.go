package taxonomy

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/wippyai/faultkit/errors"
)

// Tagged is implemented by failures that carry an explicit kind.
type Tagged interface {
	FailureKind() errors.Kind
}

// Rule maps a message shape to a kind. A rule matches when the lowercased
// message contains any of Contains, or when Pattern matches the raw message.
type Rule struct {
	Pattern  *regexp.Regexp
	Kind     errors.Kind
	Contains []string
}

func (r Rule) match(msg, lower string) bool {
	for _, s := range r.Contains {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return r.Pattern != nil && r.Pattern.MatchString(msg)
}

// namePattern recognizes messages rendered as "<ErrorName>: <message>".
var namePattern = regexp.MustCompile(`^\s*(?:Uncaught\s+)?(RangeError|ReferenceError|TypeError|SyntaxError|URIError|InternalError)\b`)

var nameKinds = map[string]errors.Kind{
	"RangeError":     errors.KindRangeViolation,
	"InternalError":  errors.KindRangeViolation,
	"ReferenceError": errors.KindUndeclaredReference,
	"TypeError":      errors.KindTypeMismatch,
	"SyntaxError":    errors.KindMalformedInput,
	"URIError":       errors.KindMalformedInput,
}

// Built-in heuristics, most specific kind first so that generic words
// like "index" never shadow "is not defined" or "unexpected token".
var builtinRules = []Rule{
	{
		Kind: errors.KindMalformedInput,
		Contains: []string{
			"unexpected token", "unexpected end of input", "unexpected eof",
			"unexpected identifier", "malformed", "invalid character",
			"syntax error", "unterminated",
		},
	},
	{
		Kind: errors.KindUndeclaredReference,
		Contains: []string{
			"not defined", "undefined variable", "is not declared",
		},
		Pattern: regexp.MustCompile(`(?i)\b(unbound|undeclared)\b`),
	},
	{
		Kind: errors.KindTypeMismatch,
		Contains: []string{
			"not a function", "not callable", "cannot read property", "cannot read properties",
			"of null", "of undefined", "cannot convert", "type mismatch",
			"nil pointer", "invalid memory address", "interface conversion",
			"must be a number", "must be numbers",
		},
	},
	{
		Kind: errors.KindRangeViolation,
		Contains: []string{
			"out of bounds", "out of range", "overflow", "divide by zero",
			"division by zero", "maximum call stack", "must be between",
			"non-negative", "invalid array length", "recursion depth",
		},
		Pattern: regexp.MustCompile(`(?i)\b(index|length|range|bounds)\b`),
	},
}

// Classifier assigns exactly one kind to a failure. Lookup order is:
// explicit tag, error name prefix, extra rules, built-in heuristics, Unknown.
// A Classifier is immutable and safe for concurrent use.
type Classifier struct {
	extra []Rule
}

var defaultClassifier = &Classifier{}

// Default returns the classifier used by Classify.
func Default() *Classifier {
	return defaultClassifier
}

// NewClassifier creates a classifier consulting extra rules, in order,
// before the built-in heuristics.
func NewClassifier(extra ...Rule) (*Classifier, error) {
	rules := make([]Rule, 0, len(extra))
	for i, r := range extra {
		if !r.Kind.Valid() {
			return nil, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("rule %d: unknown failure kind %q", i, r.Kind))
		}
		if r.Pattern == nil && len(r.Contains) == 0 {
			return nil, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("rule %d: needs a pattern or contains list", i))
		}
		r.Contains = append([]string(nil), r.Contains...)
		rules = append(rules, r)
	}
	return &Classifier{extra: rules}, nil
}

// Classify returns the kind of err using the default classifier.
func Classify(err error) errors.Kind {
	return defaultClassifier.Classify(err)
}

// ClassifyMessage returns the kind for a bare message using the default classifier.
func ClassifyMessage(msg string) errors.Kind {
	return defaultClassifier.ClassifyMessage(msg)
}

// Classify returns the kind of err. A nil error is Unknown.
func (c *Classifier) Classify(err error) errors.Kind {
	kind, _ := c.classify(err)
	return kind
}

func (c *Classifier) classify(err error) (kind errors.Kind, tagged bool) {
	if err == nil {
		return errors.KindUnknown, false
	}

	var t Tagged
	if stderrors.As(err, &t) {
		if k := t.FailureKind(); k.Valid() {
			return k, true
		}
	}

	return c.ClassifyMessage(err.Error()), false
}

// ClassifyMessage applies the message heuristics only.
func (c *Classifier) ClassifyMessage(msg string) errors.Kind {
	if m := namePattern.FindStringSubmatch(msg); m != nil {
		return nameKinds[m[1]]
	}

	lower := strings.ToLower(msg)
	for _, r := range c.extra {
		if r.match(msg, lower) {
			return r.Kind
		}
	}
	for _, r := range builtinRules {
		if r.match(msg, lower) {
			return r.Kind
		}
	}
	return errors.KindUnknown
}
