package mapping

import (
	"reflect"
	"sort"
	"sync"
)

// Resolver holds the descriptors known to a materializer, keyed by view type.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Resolve returns a *DescriptorError wrapping ErrNoDescriptor for
// view types that were never added.
type Resolver struct {
	mu          sync.RWMutex
	descriptors map[reflect.Type]*Descriptor
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{descriptors: make(map[reflect.Type]*Descriptor)}
}

// Add registers d. A second descriptor for the same view type is rejected.
func (r *Resolver) Add(d *Descriptor) error {
	if d == nil {
		return &DescriptorError{Reason: "descriptor is nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.view]; exists {
		return &DescriptorError{View: d.view, Reason: "descriptor already registered"}
	}
	r.descriptors[d.view] = d
	return nil
}

// Define compiles bindings for V and adds the result to r.
func Define[V any](r *Resolver, bindings ...Binding) error {
	d, err := NewDescriptor[V](bindings...)
	if err != nil {
		return err
	}
	return r.Add(d)
}

// Resolve returns the descriptor for view.
func (r *Resolver) Resolve(view reflect.Type) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.descriptors[view]
	r.mu.RUnlock()

	if !ok {
		return nil, &DescriptorError{View: view, Reason: "no descriptor registered", Err: ErrNoDescriptor}
	}
	return d, nil
}

// Remove drops the descriptor for view and reports whether one existed.
func (r *Resolver) Remove(view reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.descriptors[view]
	delete(r.descriptors, view)
	return ok
}

// Types returns the registered view types sorted by name.
func (r *Resolver) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reflect.Type, 0, len(r.descriptors))
	for t := range r.descriptors {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
