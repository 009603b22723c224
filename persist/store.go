package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/jonwraymond/viewcache/cache"
	"github.com/jonwraymond/viewcache/docstore"
	"github.com/jonwraymond/viewcache/observe"
	"github.com/jonwraymond/viewcache/param"
	"github.com/jonwraymond/viewcache/transform"
)

// Store persists views in a docstore.
type Store struct {
	docs     docstore.Store
	pipeline transform.Pipeline
	logger   observe.Logger
	closed   atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithPipeline sets the payload transform pipeline.
func WithPipeline(p transform.Pipeline) Option {
	return func(s *Store) { s.pipeline = p }
}

// WithLogger sets the logger for session and eviction events.
func WithLogger(l observe.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over docs. The Store owns docs and closes it on Close.
func New(docs docstore.Store, opts ...Option) *Store {
	s := &Store{docs: docs, logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns "persistent".
func (s *Store) Backend() string { return "persistent" }

// Docs returns the underlying document store.
func (s *Store) Docs() docstore.Store { return s.docs }

// withSession opens a session, runs fn and closes the session on every path.
func (s *Store) withSession(ctx context.Context, fn func(docstore.Session) error) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}
	sess, err := s.docs.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("persist: open session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			s.logger.Warn(ctx, "session close failed", observe.F("session", sess.ID()), observe.F("error", err))
		}
	}()
	return fn(sess)
}

// Lookup reads the record for (view, params), inverts the pipeline and
// decodes it as view.
func (s *Store) Lookup(ctx context.Context, view reflect.Type, params param.Map) (any, bool, error) {
	id := Fingerprint(view, params)

	var (
		rec docstore.Record
		ok  bool
	)
	err := s.withSession(ctx, func(sess docstore.Session) error {
		var err error
		rec, ok, err = sess.Get(ctx, id)
		return err
	})
	if err != nil || !ok {
		return nil, false, err
	}

	v, err := s.decode(view, rec.Payload)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) decode(view reflect.Type, payload string) (any, error) {
	data, err := s.pipeline.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	out := reflect.New(view)
	if err := json.Unmarshal([]byte(data), out.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, cache.TypeName(view), err)
	}
	return out.Elem().Interface(), nil
}

// Insert encodes e.View, runs the pipeline and writes the record in its own
// session.
func (s *Store) Insert(ctx context.Context, e cache.Entry) error {
	data, err := json.Marshal(e.View)
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", cache.TypeName(e.Key.View()), err)
	}
	payload, err := s.pipeline.Encode(string(data))
	if err != nil {
		return err
	}

	rec := docstore.Record{
		ID:              Fingerprint(e.Key.View(), e.Key.Params()),
		TypeFingerprint: TypeFingerprint(e.Key.View()),
		Payload:         payload,
	}
	return s.withSession(ctx, func(sess docstore.Session) error {
		return sess.Put(ctx, rec)
	})
}

// EvictType deletes every record of the view type.
func (s *Store) EvictType(ctx context.Context, view reflect.Type) error {
	_, err := s.EvictTypeFingerprint(ctx, TypeFingerprint(view))
	return err
}

// EvictTypeFingerprint deletes every record with the type fingerprint and
// returns how many were deleted.
func (s *Store) EvictTypeFingerprint(ctx context.Context, tf int32) (int, error) {
	var n int
	err := s.withSession(ctx, func(sess docstore.Session) error {
		recs, err := sess.FindByType(ctx, tf)
		if err != nil {
			return err
		}
		for _, r := range recs {
			ok, err := sess.Delete(ctx, r.ID)
			if err != nil {
				return err
			}
			if ok {
				n++
			}
		}
		return nil
	})
	if err == nil {
		s.logger.Debug(ctx, "evicted view type", observe.F("type_fingerprint", tf), observe.F("records", n))
	}
	return n, err
}

// Evict deletes the record for (view, params). A missing record is a
// NotFoundError.
func (s *Store) Evict(ctx context.Context, view reflect.Type, params param.Map) error {
	id := Fingerprint(view, params)
	err := s.EvictID(ctx, id)
	var nf *NotFoundError
	if errors.As(err, &nf) {
		nf.View = view
	}
	return err
}

// EvictID deletes the record with the given fingerprint.
func (s *Store) EvictID(ctx context.Context, id int64) error {
	return s.withSession(ctx, func(sess docstore.Session) error {
		ok, err := sess.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return &NotFoundError{ID: id}
		}
		return nil
	})
}

// Clean deletes every record.
func (s *Store) Clean(ctx context.Context) error {
	return s.withSession(ctx, func(sess docstore.Session) error {
		n, err := sess.DeleteAll(ctx)
		if err == nil {
			s.logger.Info(ctx, "cleaned persistent cache", observe.F("records", n))
		}
		return err
	})
}

// Stats returns the record count per type fingerprint.
func (s *Store) Stats(ctx context.Context) (map[int32]int64, error) {
	var counts map[int32]int64
	err := s.withSession(ctx, func(sess docstore.Session) error {
		var err error
		counts, err = sess.CountByType(ctx)
		return err
	})
	return counts, err
}

// Payload returns the stored payload of a record with the pipeline inverted,
// i.e. the view's JSON.
func (s *Store) Payload(ctx context.Context, id int64) (docstore.Record, json.RawMessage, error) {
	var (
		rec docstore.Record
		ok  bool
	)
	err := s.withSession(ctx, func(sess docstore.Session) error {
		var err error
		rec, ok, err = sess.Get(ctx, id)
		return err
	})
	if err != nil {
		return docstore.Record{}, nil, err
	}
	if !ok {
		return docstore.Record{}, nil, &NotFoundError{ID: id}
	}
	data, err := s.pipeline.Decode(rec.Payload)
	if err != nil {
		return rec, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return rec, json.RawMessage(data), nil
}

// Ping checks the document store.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return cache.ErrStoreClosed
	}
	return s.docs.Ping(ctx)
}

// Close closes the document store. Later calls return cache.ErrStoreClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return cache.ErrStoreClosed
	}
	return s.docs.Close()
}

var _ cache.Store = (*Store)(nil)
