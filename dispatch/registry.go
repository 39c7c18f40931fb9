package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/taxonomy"
)

// Handler consumes a classified failure. Returning a value recovers;
// returning an error repropagates it to the caller of Run.
type Handler func(ctx context.Context, rec taxonomy.Record) (any, error)

// Registry maps failure kinds to handlers, with a mandatory default used
// on lookup misses. The zero value is usable but has no default handler.
type Registry struct {
	handlers map[errors.Kind]Handler
	def      Handler
	name     string
	mu       sync.RWMutex
}

// NewRegistry creates a registry with the given default handler.
func NewRegistry(def Handler) *Registry {
	return &Registry{
		handlers: make(map[errors.Kind]Handler),
		def:      def,
	}
}

// WithName sets the name reported in registry errors and logs.
func (r *Registry) WithName(name string) *Registry {
	r.mu.Lock()
	r.name = name
	r.mu.Unlock()
	return r
}

func (r *Registry) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// Register installs h for kind. At most one handler per kind is allowed;
// use Replace to swap an existing one.
func (r *Registry) Register(kind errors.Kind, h Handler) error {
	if err := validate(kind, h); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[kind]; exists {
		return errors.New(errors.PhaseRegistry, errors.KindMalformedInput).
			Value(kind).
			Detail("handler already registered for %s", kind).
			Build()
	}
	if r.handlers == nil {
		r.handlers = make(map[errors.Kind]Handler)
	}
	r.handlers[kind] = h
	return nil
}

// Replace installs h for kind, overwriting any existing handler.
func (r *Registry) Replace(kind errors.Kind, h Handler) error {
	if err := validate(kind, h); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers == nil {
		r.handlers = make(map[errors.Kind]Handler)
	}
	r.handlers[kind] = h
	return nil
}

// Unregister removes the handler for kind and reports whether one existed.
func (r *Registry) Unregister(kind errors.Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.handlers[kind]
	delete(r.handlers, kind)
	return ok
}

// SetDefault replaces the default handler. A nil handler leaves the
// registry unusable until a default is set again.
func (r *Registry) SetDefault(h Handler) {
	r.mu.Lock()
	r.def = h
	r.mu.Unlock()
}

func (r *Registry) Default() Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Lookup returns the handler for kind. The second result is false when
// the default handler was returned because no handler matched.
func (r *Registry) Lookup(kind errors.Kind) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.handlers[kind]; ok {
		return h, true
	}
	return r.def, false
}

// Kinds lists kinds with a dedicated handler, in taxonomy order.
func (r *Registry) Kinds() []errors.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []errors.Kind
	for _, k := range errors.Kinds() {
		if _, ok := r.handlers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (r *Registry) checkDefault() error {
	if r == nil {
		return &errors.MissingDefaultHandlerError{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.def == nil {
		return &errors.MissingDefaultHandlerError{Registry: r.name}
	}
	return nil
}

func validate(kind errors.Kind, h Handler) error {
	if !kind.Valid() {
		return errors.InvalidInput(errors.PhaseRegistry, fmt.Sprintf("unknown failure kind %q", kind))
	}
	if h == nil {
		return errors.InvalidInput(errors.PhaseRegistry, fmt.Sprintf("nil handler for %s", kind))
	}
	return nil
}
