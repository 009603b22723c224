package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/jonwraymond/viewcache/param"
)

func insert(t *testing.T, s Store, view reflect.Type, p param.Map, v any) {
	t.Helper()
	if err := s.Insert(context.Background(), Entry{Key: NewKey(view, p), View: v}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func TestMemoryStore_LookupInsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	view := reflect.TypeFor[orderView]()

	if _, ok, err := s.Lookup(ctx, view, param.Of("id", 1)); ok || err != nil {
		t.Fatalf("Lookup on empty store = %v, %v", ok, err)
	}

	insert(t, s, view, param.Of("id", 1, "region", "eu"), orderView{Total: 1})
	insert(t, s, view, param.Of("id", 2), orderView{Total: 2})

	v, ok, err := s.Lookup(ctx, view, param.Of("region", "eu", "id", 1))
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v", ok, err)
	}
	if v.(orderView).Total != 1 {
		t.Errorf("Lookup() = %v", v)
	}
	if _, ok, _ := s.Lookup(ctx, reflect.TypeFor[otherView](), param.Of("id", 1, "region", "eu")); ok {
		t.Error("lookup matched across view types")
	}
	if n := s.Len(view); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}

func TestMemoryStore_Evict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	view := reflect.TypeFor[orderView]()
	insert(t, s, view, param.Of("id", 1), orderView{Total: 1})
	insert(t, s, view, param.Of("id", 2), orderView{Total: 2})

	if err := s.Evict(ctx, view, param.Of("id", 1)); err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if _, ok, _ := s.Lookup(ctx, view, param.Of("id", 1)); ok {
		t.Error("evicted entry still present")
	}
	if _, ok, _ := s.Lookup(ctx, view, param.Of("id", 2)); !ok {
		t.Error("unrelated entry evicted")
	}

	// Absent keys and unknown types are no-ops.
	if err := s.Evict(ctx, view, param.Of("id", 99)); err != nil {
		t.Errorf("Evict(absent) error = %v", err)
	}
	if err := s.Evict(ctx, reflect.TypeFor[otherView](), nil); err != nil {
		t.Errorf("Evict(unknown type) error = %v", err)
	}
}

func TestMemoryStore_EvictTypeAndClean(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	order, other := reflect.TypeFor[orderView](), reflect.TypeFor[otherView]()
	insert(t, s, order, param.Of("id", 1), orderView{})
	insert(t, s, order, param.Of("id", 2), orderView{})
	insert(t, s, other, param.Of("id", 1), otherView{})

	if err := s.EvictType(ctx, order); err != nil {
		t.Fatalf("EvictType() error = %v", err)
	}
	if s.Len(order) != 0 || s.Len(other) != 1 {
		t.Errorf("after EvictType: Len = %d, %d", s.Len(order), s.Len(other))
	}

	if err := s.Clean(ctx); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if s.Len(other) != 0 {
		t.Error("Clean() left entries")
	}
	insert(t, s, order, param.Of("id", 3), orderView{})
	if s.Len(order) != 1 {
		t.Error("store unusable after Clean()")
	}
}

func TestMemoryStore_Close(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	view := reflect.TypeFor[orderView]()
	insert(t, s, view, param.Of("id", 1), orderView{})

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	checks := map[string]error{
		"Insert":    s.Insert(ctx, Entry{Key: NewKey(view, nil)}),
		"EvictType": s.EvictType(ctx, view),
		"Evict":     s.Evict(ctx, view, nil),
		"Clean":     s.Clean(ctx),
		"Close":     s.Close(),
	}
	if _, _, err := s.Lookup(ctx, view, param.Of("id", 1)); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Lookup after Close = %v", err)
	}
	for name, err := range checks {
		if !errors.Is(err, ErrStoreClosed) {
			t.Errorf("%s after Close = %v, want ErrStoreClosed", name, err)
		}
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	view := reflect.TypeFor[orderView]()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := param.Of("id", i)
			_ = s.Insert(ctx, Entry{Key: NewKey(view, p), View: orderView{Total: float64(i)}})
			_, _, _ = s.Lookup(ctx, view, p)
			if i%5 == 0 {
				_ = s.Evict(ctx, view, p)
			}
		}()
	}
	wg.Wait()

	if n := s.Len(view); n != 40 {
		t.Errorf("Len() = %d, want 40", n)
	}
}
