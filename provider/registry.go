package provider

import (
	"reflect"
	"sort"
	"sync"
)

// Registry maps source types to their providers.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Register returns a *RegistrationError; the existing entry is
// never replaced.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]Entry)}
}

// Register adds e.
func (r *Registry) Register(e Entry) error {
	if IsNoValue(e.Source) {
		return &RegistrationError{
			Source: e.Source,
			Reason: "provider " + e.DisplayName() + " returns no value",
		}
	}
	if e.Invoke == nil {
		return &RegistrationError{Source: e.Source, Reason: "invoker is nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Source]; exists {
		return &RegistrationError{Source: e.Source, Reason: "type has already been registered"}
	}
	e.Params = append([]string(nil), e.Params...)
	r.entries[e.Source] = e
	return nil
}

// Lookup returns the provider for source.
func (r *Registry) Lookup(source reflect.Type) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[source]
	return e, ok
}

// Unregister removes the provider for source and reports whether one existed.
func (r *Registry) Unregister(source reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[source]
	delete(r.entries, source)
	return ok
}

// ClearAll removes every provider.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	clear(r.entries)
	r.mu.Unlock()
}

// Sources returns registered source types sorted by name.
func (r *Registry) Sources() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reflect.Type, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IsNoValue reports whether t cannot carry a source: a nil type or a
// zero-size struct such as struct{}.
func IsNoValue(t reflect.Type) bool {
	if t == nil {
		return true
	}
	return t.Kind() == reflect.Struct && t.NumField() == 0 && t.Size() == 0
}
