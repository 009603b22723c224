package docstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Memory is an in-process Store. All sessions share one record map.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]Record
	closed  bool
	open    atomic.Int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[int64]Record)}
}

// Driver returns "memory".
func (m *Memory) Driver() string { return "memory" }

// OpenSession opens a session.
func (m *Memory) OpenSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.open.Add(1)
	return &memorySession{id: uuid.NewString(), store: m}, nil
}

// Ping reports ErrClosed after Close.
func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// Close drops all records.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}

// OpenSessions returns the number of sessions opened and not yet closed.
func (m *Memory) OpenSessions() int64 { return m.open.Load() }

type memorySession struct {
	id     string
	store  *Memory
	closed bool
}

func (s *memorySession) ID() string { return s.id }

// read runs fn under the store's read lock.
func (s *memorySession) read(fn func(map[int64]Record)) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	if s.store.closed {
		return ErrClosed
	}
	fn(s.store.records)
	return nil
}

func (s *memorySession) write(fn func(map[int64]Record)) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.closed {
		return ErrClosed
	}
	fn(s.store.records)
	return nil
}

func (s *memorySession) Put(_ context.Context, r Record) error {
	return s.write(func(m map[int64]Record) { m[r.ID] = r })
}

func (s *memorySession) Get(_ context.Context, id int64) (Record, bool, error) {
	var (
		r  Record
		ok bool
	)
	err := s.read(func(m map[int64]Record) { r, ok = m[id] })
	return r, ok, err
}

func (s *memorySession) FindByType(_ context.Context, tf int32) ([]Record, error) {
	var out []Record
	err := s.read(func(m map[int64]Record) {
		for _, r := range m {
			if r.TypeFingerprint == tf {
				out = append(out, r)
			}
		}
	})
	sortByID(out)
	return out, err
}

func (s *memorySession) Delete(_ context.Context, id int64) (bool, error) {
	var ok bool
	err := s.write(func(m map[int64]Record) {
		_, ok = m[id]
		delete(m, id)
	})
	return ok, err
}

func (s *memorySession) DeleteAll(_ context.Context) (int64, error) {
	var n int64
	err := s.write(func(m map[int64]Record) {
		n = int64(len(m))
		clear(m)
	})
	return n, err
}

func (s *memorySession) All(_ context.Context) ([]Record, error) {
	var out []Record
	err := s.read(func(m map[int64]Record) { out = slices.Collect(maps.Values(m)) })
	sortByID(out)
	return out, err
}

func (s *memorySession) CountByType(_ context.Context) (map[int32]int64, error) {
	counts := make(map[int32]int64)
	err := s.read(func(m map[int64]Record) {
		for _, r := range m {
			counts[r.TypeFingerprint]++
		}
	})
	return counts, err
}

func (s *memorySession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.store.open.Add(-1)
	return nil
}

func sortByID(rs []Record) {
	slices.SortFunc(rs, func(a, b Record) int { return cmp.Compare(a.ID, b.ID) })
}

var _ Store = (*Memory)(nil)
