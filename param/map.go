package param

import (
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Map holds named input values.
type Map map[string]any

// Of builds a Map from alternating name/value arguments.
// A trailing name without a value is ignored.
func Of(pairs ...any) Map {
	m := make(Map, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		m[name] = pairs[i+1]
	}
	return m
}

// Key returns the key in m that matches name. An exact match wins; otherwise
// the lexicographically first case-insensitive match is returned.
func (m Map) Key(name string) (string, bool) {
	if _, ok := m[name]; ok {
		return name, true
	}
	found := ""
	ok := false
	for k := range m {
		if !strings.EqualFold(k, name) {
			continue
		}
		if !ok || k < found {
			found = k
			ok = true
		}
	}
	return found, ok
}

// Lookup returns the value bound to name, matched case-insensitively.
func (m Map) Lookup(name string) (any, bool) {
	k, ok := m.Key(name)
	if !ok {
		return nil, false
	}
	return m[k], true
}

// Missing returns the names that have no case-insensitive match in m,
// in the order given.
func (m Map) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := m.Key(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Names returns the keys of m in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of m. A nil map clones to an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether m and other hold the same key/value pairs.
// Keys compare exactly; values compare with reflect.DeepEqual.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Hash returns a structural, order-independent digest of m.
// Equal maps always hash equal.
func (m Map) Hash() uint64 {
	var acc uint64
	for k, v := range m {
		acc += PairHash(k, v)
	}
	return mix(acc ^ uint64(len(m)))
}

// PairHash digests a single key/value pair. The value is rendered
// structurally, so its dynamic type takes part and pointers are followed.
func PairHash(key string, value any) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(key)
	_, _ = d.Write([]byte{0x00})
	_, _ = d.Write(structural(value))
	return mix(d.Sum64())
}

// mix is the splitmix64 finalizer; it keeps summed pair digests from
// cancelling linearly.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
