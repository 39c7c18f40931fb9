// Package taxonomy classifies raised failures into the closed set of
// failure kinds defined by package errors and builds immutable Records
// describing them.
//
// Classification is pure and deterministic. An explicit kind tag always
// wins; untagged failures are matched by error name prefix
// ("TypeError: ...") and then by message heuristics, with Unknown as the
// fallback:
//
//	taxonomy.Classify(fmt.Errorf("arr[1000] is out of bounds")) // range_violation
//	taxonomy.Classify(fmt.Errorf("x is not defined"))           // undeclared_reference
package taxonomy
