package cache

import (
	"context"
	"errors"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/jonwraymond/viewcache/param"
)

// Sentinel errors for cache operations.
var (
	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("cache: store is closed")

	// ErrDisposed indicates an operation on a disposed service.
	ErrDisposed = errors.New("cache: service is disposed")

	// ErrNilStore indicates a service was constructed without a store.
	ErrNilStore = errors.New("cache: store is nil")
)

// Key identifies a cached view: a view type plus its parameters.
// Two keys are equal when they name the same view type and hold the same
// set of name/value pairs.
type Key struct {
	view   reflect.Type
	params param.Map
	hash   uint64
}

// NewKey builds a key. params is copied.
func NewKey(view reflect.Type, params param.Map) Key {
	p := params.Clone()
	return Key{view: view, params: p, hash: keyHash(view, p)}
}

func keyHash(view reflect.Type, params param.Map) uint64 {
	return xxhash.Sum64String(TypeName(view))*31 + params.Hash()
}

// View returns the view type.
func (k Key) View() reflect.Type { return k.view }

// Params returns a copy of the key's parameters.
func (k Key) Params() param.Map { return k.params.Clone() }

// Hash returns a structural hash consistent with Equal.
func (k Key) Hash() uint64 { return k.hash }

// Equal reports whether k and other identify the same cached view.
func (k Key) Equal(other Key) bool {
	return k.view == other.view && k.hash == other.hash && k.params.Equal(other.params)
}

// matches compares against a lookup without copying params.
func (k Key) matches(view reflect.Type, params param.Map, hash uint64) bool {
	return k.view == view && k.hash == hash && k.params.Equal(params)
}

// String renders the key for logs.
func (k Key) String() string {
	return TypeName(k.view) + "\x00" + k.params.Canonical()
}

// Entry is a built view held by a store.
type Entry struct {
	Key  Key
	View any
}

// Store holds built views.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: methods should honor cancellation where the backend allows it.
//   - Errors: Lookup returns (nil, false, nil) on a miss. After Close every
//     method returns ErrStoreClosed.
//   - Ownership: the store owns inserted entries until they are evicted.
type Store interface {
	// Backend names the storage strategy, e.g. "memory" or "persistent".
	Backend() string

	// Lookup returns the view cached for (view, params).
	Lookup(ctx context.Context, view reflect.Type, params param.Map) (any, bool, error)

	// Insert stores e.
	Insert(ctx context.Context, e Entry) error

	// EvictType removes every entry of a view type.
	EvictType(ctx context.Context, view reflect.Type) error

	// Evict removes the entry for (view, params). Whether a missing entry is
	// an error is up to the implementation.
	Evict(ctx context.Context, view reflect.Type, params param.Map) error

	// Clean removes every entry.
	Clean(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// TypeName returns a package-qualified name for t, stable across runs.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
