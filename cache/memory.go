package cache

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/jonwraymond/viewcache/param"
)

// MemoryStore is the volatile Store: one mutex-guarded entry list per view
// type, scanned linearly on lookup. Evict on a missing entry is a no-op.
type MemoryStore struct {
	mu     sync.RWMutex
	lists  map[reflect.Type]*entryList
	closed bool
}

type entryList struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[reflect.Type]*entryList)}
}

// Backend returns "memory".
func (s *MemoryStore) Backend() string { return "memory" }

func (s *MemoryStore) list(view reflect.Type, create bool) (*entryList, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	l := s.lists[view]
	s.mu.RUnlock()
	if l != nil || !create {
		return l, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	if l = s.lists[view]; l == nil {
		l = &entryList{}
		s.lists[view] = l
	}
	return l, nil
}

// Lookup scans the view type's entries for an equal key.
func (s *MemoryStore) Lookup(_ context.Context, view reflect.Type, params param.Map) (any, bool, error) {
	l, err := s.list(view, false)
	if err != nil || l == nil {
		return nil, false, err
	}

	h := keyHash(view, params)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Key.matches(view, params, h) {
			return e.View, true, nil
		}
	}
	return nil, false, nil
}

// Insert appends e to its view type's list.
func (s *MemoryStore) Insert(_ context.Context, e Entry) error {
	l, err := s.list(e.Key.View(), true)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return nil
}

// EvictType clears every entry of view.
func (s *MemoryStore) EvictType(_ context.Context, view reflect.Type) error {
	l, err := s.list(view, false)
	if err != nil || l == nil {
		return err
	}
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
	return nil
}

// Evict removes entries equal to (view, params). Duplicates left by
// concurrent unsynchronized builds go with it.
func (s *MemoryStore) Evict(_ context.Context, view reflect.Type, params param.Map) error {
	l, err := s.list(view, false)
	if err != nil || l == nil {
		return err
	}
	h := keyHash(view, params)
	l.mu.Lock()
	l.entries = slices.DeleteFunc(l.entries, func(e Entry) bool {
		return e.Key.matches(view, params, h)
	})
	l.mu.Unlock()
	return nil
}

// Clean clears every list.
func (s *MemoryStore) Clean(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	for _, l := range s.lists {
		l.mu.Lock()
		l.entries = nil
		l.mu.Unlock()
	}
	return nil
}

// Len returns the number of entries cached for view.
func (s *MemoryStore) Len(view reflect.Type) int {
	l, err := s.list(view, false)
	if err != nil || l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close releases all storage. Later calls return ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	s.lists = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
