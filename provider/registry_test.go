package provider

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

type invoice struct {
	ID     int
	Amount float64
}

type customer struct {
	Name string
}

func invoiceProvider() Entry {
	return Func1("orderID", func(_ context.Context, id int) (invoice, error) {
		return invoice{ID: id, Amount: 10}, nil
	})
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(invoiceProvider()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	e, ok := r.Lookup(reflect.TypeFor[invoice]())
	if !ok {
		t.Fatal("Lookup() found = false")
	}
	if !reflect.DeepEqual(e.Params, []string{"orderID"}) {
		t.Errorf("Params = %v", e.Params)
	}
	if _, ok := r.Lookup(reflect.TypeFor[customer]()); ok {
		t.Error("Lookup() of unregistered type should miss")
	}
}

func TestRegistry_DuplicateKeepsOriginal(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(invoiceProvider()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	replacement := NewFunc([]string{"other"}, func(context.Context, Args) (invoice, error) {
		return invoice{ID: -1}, nil
	})
	err := r.Register(replacement)

	var regErr *RegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected *RegistrationError, got %v", err)
	}
	if !errors.Is(err, ErrRegistration) {
		t.Error("error should match ErrRegistration")
	}

	e, _ := r.Lookup(reflect.TypeFor[invoice]())
	if e.Params[0] != "orderID" {
		t.Errorf("original registration was replaced: %v", e.Params)
	}
}

func TestRegistry_RejectsNoValue(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name  string
		entry Entry
	}{
		{"nil source", Entry{Invoke: func(context.Context, any, Args) (any, error) { return nil, nil }}},
		{"empty struct", NewFunc(nil, func(context.Context, Args) (struct{}, error) { return struct{}{}, nil })},
		{"nil invoker", Entry{Source: reflect.TypeFor[customer]()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.entry); !errors.Is(err, ErrRegistration) {
				t.Errorf("Register() error = %v, want ErrRegistration", err)
			}
		})
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(invoiceProvider())

	if !r.Unregister(reflect.TypeFor[invoice]()) {
		t.Error("first Unregister() = false")
	}
	if r.Unregister(reflect.TypeFor[invoice]()) {
		t.Error("second Unregister() = true")
	}
	if err := r.Register(invoiceProvider()); err != nil {
		t.Errorf("re-Register after Unregister failed: %v", err)
	}
}

func TestRegistry_ClearAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(invoiceProvider())
	_ = r.Register(Func1("name", func(_ context.Context, n string) (customer, error) {
		return customer{Name: n}, nil
	}))

	if got := r.Sources(); len(got) != 2 {
		t.Fatalf("Sources() = %v", got)
	}
	r.ClearAll()
	if r.Len() != 0 {
		t.Errorf("Len() after ClearAll = %d", r.Len())
	}
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	const n = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Register(invoiceProvider()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one successful registration, got %d", succeeded)
	}
}
