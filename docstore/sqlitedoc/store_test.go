package sqlitedoc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"

	"github.com/jonwraymond/viewcache/docstore"
	"github.com/jonwraymond/viewcache/docstore/docstoretest"
)

func openTemp(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "views.db"), opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	s := openTemp(t)
	docstoretest.Run(t, s)
	if n := s.OpenSessions(); n != 0 {
		t.Errorf("OpenSessions() = %d after suite, want 0", n)
	}
}

func TestStore_CustomTable(t *testing.T) {
	s := openTemp(t, WithTable("statement_views"))
	if s.Table() != "statement_views" {
		t.Errorf("Table() = %q", s.Table())
	}
	docstoretest.Run(t, s)
}

func TestOpen_InvalidTable(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "x.db"), WithTable("views; DROP TABLE x"))
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("err = %v, want ErrInvalidTable", err)
	}
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sess, _ := s.OpenSession(ctx)
	if err := sess.Put(ctx, docstore.Record{ID: 9, TypeFingerprint: 1, Payload: "kept"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	sess.Close()
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	sess, _ = s.OpenSession(ctx)
	defer sess.Close()
	r, ok, err := sess.Get(ctx, 9)
	if err != nil || !ok || r.Payload != "kept" {
		t.Errorf("Get() after reopen = %+v, %v, %v", r, ok, err)
	}
}

func TestStore_ClosedStore(t *testing.T) {
	s := openTemp(t)
	_ = s.Close()
	if _, err := s.OpenSession(context.Background()); !errors.Is(err, docstore.ErrClosed) {
		t.Errorf("OpenSession after Close = %v, want ErrClosed", err)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{errors.New("busy"), false},
	}
	for _, tt := range tests {
		if got := IsBusy(tt.err); got != tt.want {
			t.Errorf("IsBusy(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
