// Package docstoretest holds the behavior every docstore driver must share.
package docstoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/viewcache/docstore"
)

// Run exercises store against the docstore.Session contract. The store must
// be empty; Run leaves it empty.
func Run(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()

	open := func(t *testing.T) docstore.Session {
		t.Helper()
		s, err := store.OpenSession(ctx)
		if err != nil {
			t.Fatalf("OpenSession() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("Ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
	})

	t.Run("PutGetReplace", func(t *testing.T) {
		s := open(t)
		defer clean(t, s)

		rec := docstore.Record{ID: -42, TypeFingerprint: 7, Payload: `{"A":1}`}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, ok, err := s.Get(ctx, rec.ID)
		if err != nil || !ok {
			t.Fatalf("Get() = %v, %v", ok, err)
		}
		if got != rec {
			t.Errorf("Get() = %+v, want %+v", got, rec)
		}

		rec.Payload = `{"A":2}`
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put(replace) error = %v", err)
		}
		got, _, _ = s.Get(ctx, rec.ID)
		if got.Payload != `{"A":2}` {
			t.Errorf("replace kept %q", got.Payload)
		}

		if _, ok, err := s.Get(ctx, 99); ok || err != nil {
			t.Errorf("Get(missing) = %v, %v", ok, err)
		}
	})

	t.Run("FindDeleteCount", func(t *testing.T) {
		s := open(t)
		defer clean(t, s)

		for _, r := range []docstore.Record{
			{ID: 3, TypeFingerprint: 1, Payload: "c"},
			{ID: 1, TypeFingerprint: 1, Payload: "a"},
			{ID: 2, TypeFingerprint: 2, Payload: "b"},
		} {
			if err := s.Put(ctx, r); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
		}

		byType, err := s.FindByType(ctx, 1)
		if err != nil {
			t.Fatalf("FindByType() error = %v", err)
		}
		if len(byType) != 2 || byType[0].ID != 1 || byType[1].ID != 3 {
			t.Errorf("FindByType() = %+v", byType)
		}

		counts, err := s.CountByType(ctx)
		if err != nil {
			t.Fatalf("CountByType() error = %v", err)
		}
		if counts[1] != 2 || counts[2] != 1 {
			t.Errorf("CountByType() = %v", counts)
		}

		ok, err := s.Delete(ctx, 1)
		if err != nil || !ok {
			t.Fatalf("Delete() = %v, %v", ok, err)
		}
		if ok, _ := s.Delete(ctx, 1); ok {
			t.Error("second Delete() reported a removal")
		}

		all, err := s.All(ctx)
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(all) != 2 || all[0].ID != 2 || all[1].ID != 3 {
			t.Errorf("All() = %+v", all)
		}

		n, err := s.DeleteAll(ctx)
		if err != nil || n != 2 {
			t.Errorf("DeleteAll() = %d, %v", n, err)
		}
	})

	t.Run("SessionsShareData", func(t *testing.T) {
		a, b := open(t), open(t)
		defer clean(t, a)
		if a.ID() == "" || a.ID() == b.ID() {
			t.Errorf("session ids %q and %q", a.ID(), b.ID())
		}
		if err := a.Put(ctx, docstore.Record{ID: 5, TypeFingerprint: 5, Payload: "x"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, ok, err := b.Get(ctx, 5); !ok || err != nil {
			t.Errorf("record not visible across sessions: %v, %v", ok, err)
		}
	})

	t.Run("ClosedSession", func(t *testing.T) {
		s := open(t)
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
		if _, _, err := s.Get(ctx, 1); !errors.Is(err, docstore.ErrSessionClosed) {
			t.Errorf("Get after Close = %v, want ErrSessionClosed", err)
		}
	})
}

func clean(t *testing.T, s docstore.Session) {
	t.Helper()
	if _, err := s.DeleteAll(context.Background()); err != nil {
		t.Errorf("DeleteAll() error = %v", err)
	}
}
