package faultkit

import (
	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/taxonomy"
)

// Kind is the failure kind assigned by classification.
type Kind = errors.Kind

// Record describes one classified failure.
type Record = taxonomy.Record

// Classify returns the kind of err using the default classifier.
func Classify(err error) Kind {
	return taxonomy.Classify(err)
}

// NewRegistry creates a handler registry with the given default handler.
func NewRegistry(def dispatch.Handler) *dispatch.Registry {
	return dispatch.NewRegistry(def)
}
