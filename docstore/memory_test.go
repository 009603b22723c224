package docstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/viewcache/docstore"
	"github.com/jonwraymond/viewcache/docstore/docstoretest"
)

func TestMemory_Contract(t *testing.T) {
	m := docstore.NewMemory()
	docstoretest.Run(t, m)
	if n := m.OpenSessions(); n != 0 {
		t.Errorf("OpenSessions() = %d after suite, want 0", n)
	}
}

func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	m := docstore.NewMemory()
	s, err := m.OpenSession(ctx)
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	defer s.Close()

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := m.OpenSession(ctx); !errors.Is(err, docstore.ErrClosed) {
		t.Errorf("OpenSession after Close = %v", err)
	}
	if err := m.Ping(ctx); !errors.Is(err, docstore.ErrClosed) {
		t.Errorf("Ping after Close = %v", err)
	}
	if err := s.Put(ctx, docstore.Record{ID: 1}); !errors.Is(err, docstore.ErrClosed) {
		t.Errorf("Put on open session after store Close = %v", err)
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := docstore.NewMemory().OpenSession(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("OpenSession(canceled) = %v", err)
	}
}
