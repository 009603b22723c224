package persist

import (
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/jonwraymond/viewcache/cache"
	"github.com/jonwraymond/viewcache/param"
)

// TypeFingerprint identifies a view type: the low 32 bits of the xxhash of
// its package-qualified name.
func TypeFingerprint(view reflect.Type) int32 {
	return int32(uint32(xxhash.Sum64String(cache.TypeName(view))))
}

// Fingerprint identifies a (view type, parameters) pair. It folds the
// parameter count, the type fingerprint and an order-independent sum of
// per-pair hashes. Arithmetic wraps.
func Fingerprint(view reflect.Type, params param.Map) int64 {
	h := uint64(len(params)) + 1
	h *= h + uint64(uint32(TypeFingerprint(view)))

	var pairs uint64
	for k, v := range params {
		pairs += param.PairHash(k, v)
	}
	h *= h + pairs
	return int64(h)
}
