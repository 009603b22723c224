package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/viewcache/materialize"
	"github.com/jonwraymond/viewcache/observe"
	"github.com/jonwraymond/viewcache/param"
	"github.com/jonwraymond/viewcache/provider"
)

// Service serves views from a Store, building them on a miss.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: build and store errors are returned unchanged; a failed build
//     stores nothing. After Dispose every method returns ErrDisposed.
//   - Ownership: the service owns its store and closes it on Dispose.
type Service struct {
	mu       sync.RWMutex
	store    Store
	mat      *materialize.Materializer
	disposed bool

	policy  Policy
	flight  singleflight.Group
	logger  observe.Logger
	metrics observe.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPolicy sets the service policy.
func WithPolicy(p Policy) ServiceOption {
	return func(s *Service) { s.policy = p }
}

// WithLogger sets the logger used for hits and misses.
func WithLogger(l observe.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the lookup metrics sink.
func WithMetrics(m observe.Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates a service over store using mat to build misses.
func NewService(store Store, mat *materialize.Materializer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	s := &Service{
		store:   store,
		mat:     mat,
		policy:  DefaultPolicy(),
		logger:  observe.NopLogger(),
		metrics: observe.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) active() (Store, *materialize.Materializer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return nil, nil, ErrDisposed
	}
	return s.store, s.mat, nil
}

// Register adds a provider to the materializer's registry.
func (s *Service) Register(e provider.Entry) error {
	_, mat, err := s.active()
	if err != nil {
		return err
	}
	return mat.Registry().Register(e)
}

// Get returns the view for (view, params), building and storing it on a miss.
func (s *Service) Get(ctx context.Context, view reflect.Type, params param.Map) (any, error) {
	store, mat, err := s.active()
	if err != nil {
		return nil, err
	}

	meta := mat.Meta(view)
	meta.Backend = store.Backend()
	log := s.logger.WithView(meta)

	v, ok, err := store.Lookup(ctx, view, params)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLookup(ctx, meta, ok)
	if ok {
		log.Debug(ctx, "cache hit")
		return v, nil
	}
	log.Debug(ctx, "cache miss")

	if !s.policy.SingleFlight {
		return s.buildAndStore(ctx, store, mat, view, params)
	}

	key := NewKey(view, params)
	res, err, shared := s.flight.Do(flightKey(key), func() (any, error) {
		v, err := s.lookupOrBuild(ctx, store, mat, key)
		return flightResult{key: key, view: v}, err
	})
	if shared {
		// Flights group by hash; a leader with an unequal key built some
		// other view.
		if !res.(flightResult).key.Equal(key) {
			log.Debug(ctx, "in-flight build was for another key")
			return s.lookupOrBuild(ctx, store, mat, key)
		}
		log.Debug(ctx, "joined in-flight build")
	}
	return res.(flightResult).view, err
}

// flightResult carries the key a flight was started for, so joiners can
// verify it matches their own.
type flightResult struct {
	key  Key
	view any
}

func flightKey(k Key) string {
	return fmt.Sprintf("%s\x00%016x", TypeName(k.View()), k.Hash())
}

// lookupOrBuild re-checks the store before building.
func (s *Service) lookupOrBuild(ctx context.Context, store Store, mat *materialize.Materializer, key Key) (any, error) {
	v, ok, err := store.Lookup(ctx, key.view, key.params)
	if err != nil || ok {
		return v, err
	}
	return s.buildAndStore(ctx, store, mat, key.view, key.params)
}

func (s *Service) buildAndStore(ctx context.Context, store Store, mat *materialize.Materializer, view reflect.Type, params param.Map) (any, error) {
	v, err := mat.Build(ctx, view, params)
	if err != nil {
		return nil, err
	}
	if err := store.Insert(ctx, Entry{Key: NewKey(view, params), View: v}); err != nil {
		return nil, fmt.Errorf("cache: store %s view: %w", TypeName(view), err)
	}
	return v, nil
}

// Exists reports whether Get yields a view. A miss is built and cached.
func (s *Service) Exists(ctx context.Context, view reflect.Type, params param.Map) (bool, error) {
	v, err := s.Get(ctx, view, params)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// ExpireType evicts every cached view of a type.
func (s *Service) ExpireType(ctx context.Context, view reflect.Type) error {
	store, _, err := s.active()
	if err != nil {
		return err
	}
	return store.EvictType(ctx, view)
}

// Expire evicts the view cached for params.
func (s *Service) Expire(ctx context.Context, view reflect.Type, params param.Map) error {
	store, _, err := s.active()
	if err != nil {
		return err
	}
	return store.Evict(ctx, view, params)
}

// Clean evicts every cached view. Provider registrations are kept.
func (s *Service) Clean(ctx context.Context) error {
	store, _, err := s.active()
	if err != nil {
		return err
	}
	return store.Clean(ctx)
}

// Backend names the store strategy in use.
func (s *Service) Backend() string {
	store, _, err := s.active()
	if err != nil {
		return ""
	}
	return store.Backend()
}

// Store returns the active store.
func (s *Service) Store() (Store, error) {
	store, _, err := s.active()
	return store, err
}

// Dispose closes the store and drops the service's references. The service
// is unusable afterwards.
func (s *Service) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	s.disposed = true
	err := s.store.Close()
	s.store = nil
	s.mat = nil
	return err
}

// Get is Service.Get for a view type known at compile time.
func Get[V any](ctx context.Context, s *Service, params param.Map) (V, error) {
	var zero V
	v, err := s.Get(ctx, reflect.TypeFor[V](), params)
	if err != nil {
		return zero, err
	}
	out, ok := v.(V)
	if !ok {
		return zero, fmt.Errorf("cache: cached value is %T, want %s", v, TypeName(reflect.TypeFor[V]()))
	}
	return out, nil
}

// Exists is Service.Exists for a view type known at compile time.
func Exists[V any](ctx context.Context, s *Service, params param.Map) (bool, error) {
	return s.Exists(ctx, reflect.TypeFor[V](), params)
}

// ExpireTypeOf is Service.ExpireType for V.
func ExpireTypeOf[V any](ctx context.Context, s *Service) error {
	return s.ExpireType(ctx, reflect.TypeFor[V]())
}

// ExpireOf is Service.Expire for V.
func ExpireOf[V any](ctx context.Context, s *Service, params param.Map) error {
	return s.Expire(ctx, reflect.TypeFor[V](), params)
}
