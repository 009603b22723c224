package param

import (
	"math"
	"reflect"
	"testing"
)

func TestMap_EqualIgnoresInsertionOrder(t *testing.T) {
	a := Map{}
	a["p1"] = 3
	a["p2"] = "x"
	a["p3"] = false

	b := Map{}
	b["p3"] = false
	b["p1"] = 3
	b["p2"] = "x"

	if !a.Equal(b) || !b.Equal(a) {
		t.Fatal("maps with the same pairs should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Errorf("Hash() differs for equal maps: %x vs %x", a.Hash(), b.Hash())
	}
	if a.Canonical() != b.Canonical() {
		t.Errorf("Canonical() differs for equal maps:\n  %s\n  %s", a.Canonical(), b.Canonical())
	}
}

func TestMap_NotEqual(t *testing.T) {
	base := Map{"p1": 3, "p2": "x"}

	tests := []struct {
		name  string
		other Map
	}{
		{"different value", Map{"p1": 4, "p2": "x"}},
		{"different key", Map{"p1": 3, "q2": "x"}},
		{"extra pair", Map{"p1": 3, "p2": "x", "p3": true}},
		{"fewer pairs", Map{"p1": 3}},
		{"empty", Map{}},
		{"key case differs", Map{"P1": 3, "p2": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.Equal(tt.other) {
				t.Errorf("Equal(%v) = true, want false", tt.other)
			}
			if tt.other.Equal(base) {
				t.Errorf("reverse Equal(%v) = true, want false", tt.other)
			}
		})
	}
}

func TestMap_HashDiffersForSwappedValues(t *testing.T) {
	a := Map{"p1": "x", "p2": "y"}
	b := Map{"p1": "y", "p2": "x"}
	if a.Hash() == b.Hash() {
		t.Error("swapping values between keys should change the hash")
	}
}

func TestMap_NilAndEmptyAreEqual(t *testing.T) {
	var nilMap Map
	if !nilMap.Equal(Map{}) {
		t.Error("nil map should equal empty map")
	}
	if nilMap.Hash() != (Map{}).Hash() {
		t.Error("nil and empty maps should hash equal")
	}
}

func TestMap_LookupCaseInsensitive(t *testing.T) {
	m := Map{"OrderID": 42, "region": "eu"}

	tests := []struct {
		name  string
		want  any
		found bool
	}{
		{"OrderID", 42, true},
		{"orderid", 42, true},
		{"ORDERID", 42, true},
		{"Region", "eu", true},
		{"customer", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Lookup(tt.name)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.name, ok, tt.found)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMap_KeyPrefersExactMatch(t *testing.T) {
	m := Map{"id": 1, "ID": 2, "Id": 3}

	if k, _ := m.Key("ID"); k != "ID" {
		t.Errorf("Key(ID) = %q, want exact match", k)
	}
	if k, _ := m.Key("iD"); k != "ID" {
		t.Errorf("Key(iD) = %q, want lexicographically first fold match %q", k, "ID")
	}
}

func TestMap_Missing(t *testing.T) {
	m := Map{"p1": 3}
	got := m.Missing([]string{"P1", "p2", "p3"})
	want := []string{"p2", "p3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}
	if got := m.Missing([]string{"p1"}); got != nil {
		t.Errorf("Missing() = %v, want nil", got)
	}
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := Map{"p1": 1}
	c := m.Clone()
	m["p1"] = 2
	if c["p1"] != 1 {
		t.Errorf("clone changed after source mutation: %v", c["p1"])
	}
}

func TestOf(t *testing.T) {
	m := Of("p1", 3, "p2", "x", "dangling")
	want := Map{"p1": 3, "p2": "x"}
	if !m.Equal(want) {
		t.Errorf("Of() = %v, want %v", m, want)
	}
}

func TestCanonical_NestedMapsSorted(t *testing.T) {
	m := Map{"b": map[string]any{"z": 1, "a": 2}, "a": []any{3, 2, 1}}
	want := `{"a":[3,2,1],"b":{"a":2,"z":1}}`
	if got := m.Canonical(); got != want {
		t.Errorf("Canonical() = %s, want %s", got, want)
	}
}

func TestCanonical_UnencodableValue(t *testing.T) {
	m := Map{"fn": func() {}}
	if got := m.Canonical(); got == "" {
		t.Error("Canonical() should fall back for values encoding/json rejects")
	}
}

type pagedFilter struct {
	Limit  *int
	Sort   func(a, b int) bool
	labels map[string][]string
}

func TestMap_HashFollowsPointers(t *testing.T) {
	a, b := 5, 5
	m1 := Of("f", pagedFilter{Limit: &a, labels: map[string][]string{"x": {"1"}, "y": nil}})
	m2 := Of("f", pagedFilter{Limit: &b, labels: map[string][]string{"y": nil, "x": {"1"}}})

	if !m1.Equal(m2) {
		t.Fatal("maps holding equal pointees should be equal")
	}
	if m1.Hash() != m2.Hash() {
		t.Errorf("Hash() = %x and %x for equal maps", m1.Hash(), m2.Hash())
	}
	if m1.Canonical() != m2.Canonical() {
		t.Errorf("Canonical() differs for equal maps:\n  %s\n  %s", m1.Canonical(), m2.Canonical())
	}

	c := 6
	if m3 := Of("f", pagedFilter{Limit: &c}); m3.Hash() == m1.Hash() {
		t.Error("different pointees should change the hash")
	}
}

func TestMap_HashSeparatesTypesJSONConflates(t *testing.T) {
	type opaque struct{ id int }

	tests := []struct {
		name string
		a, b any
	}{
		{"bytes and base64 string", []byte("abc"), "YWJj"},
		{"int and float", 1, float64(1)},
		{"unexported fields", opaque{id: 1}, opaque{id: 2}},
		{"nil and empty slice", []int(nil), []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m1, m2 := Of("p", tt.a), Of("p", tt.b)
			if m1.Equal(m2) {
				t.Fatal("values should not be equal")
			}
			if m1.Hash() == m2.Hash() {
				t.Errorf("Hash() = %x for both", m1.Hash())
			}
		})
	}
}

func TestMap_HashNegativeZero(t *testing.T) {
	if Of("x", 0.0).Hash() != Of("x", math.Copysign(0, -1)).Hash() {
		t.Error("0 and -0 compare equal and should hash equal")
	}
}
