package param

import (
	"encoding/json"
	"sort"
)

// Canonical produces a deterministic encoding of m: a JSON object with keys
// sorted and nested maps canonicalized the same way.
func (m Map) Canonical() string {
	return string(canonicalValue(map[string]any(m)))
}

// canonicalValue never fails: values encoding/json cannot handle fall back to
// their structural rendering as a JSON string.
func canonicalValue(v any) []byte {
	b, err := canonicalize(v)
	if err != nil {
		b, _ = json.Marshal(string(structural(v)))
	}
	return b
}

func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case Map:
		return canonicalizeMap(val)
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}
