package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/viewcache/cache"
	"github.com/jonwraymond/viewcache/config"
	"github.com/jonwraymond/viewcache/health"
	"github.com/jonwraymond/viewcache/mapping"
	"github.com/jonwraymond/viewcache/materialize"
	"github.com/jonwraymond/viewcache/observe"
	"github.com/jonwraymond/viewcache/provider"
	"github.com/jonwraymond/viewcache/secret"
)

var (
	// ErrAlreadyInitialized indicates Init was called a second time.
	ErrAlreadyInitialized = errors.New("bootstrap: environment already initialized")

	// ErrNotInitialized indicates the environment was used before Init.
	ErrNotInitialized = errors.New("bootstrap: environment not initialized")

	// ErrClosed indicates the environment was used after Close.
	ErrClosed = errors.New("bootstrap: environment closed")
)

// Environment owns the components shared by every cache service.
//
// Contract:
//   - Concurrency: safe for concurrent use after Init.
//   - Init may succeed once; later calls return ErrAlreadyInitialized.
//   - Ownership: Close disposes every service the environment created.
type Environment struct {
	mu          sync.Mutex
	initialized bool
	closed      bool

	cfg      *config.Config
	secrets  *secret.Resolver
	obs      observe.Observer
	ownsObs  bool
	mw       *observe.Middleware
	registry *provider.Registry
	resolver *mapping.Resolver
	mat      *materialize.Materializer
	health   *health.Aggregator

	services []*cache.Service
	stores   int
}

// Option configures an Environment.
type Option func(*Environment)

// WithObserver supplies the observer instead of building one from config.
// The caller keeps ownership and shuts it down.
func WithObserver(obs observe.Observer) Option {
	return func(e *Environment) { e.obs = obs }
}

// WithSecretResolver sets the resolver for secret-bearing config values.
func WithSecretResolver(r *secret.Resolver) Option {
	return func(e *Environment) {
		if r != nil {
			e.secrets = r
		}
	}
}

// New creates an uninitialized Environment.
func New(opts ...Option) *Environment {
	e := &Environment{secrets: secret.DefaultResolver()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init builds the shared components from cfg. A nil cfg uses
// config.Default().
func (e *Environment) Init(ctx context.Context, cfg *config.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return ErrAlreadyInitialized
	}
	if e.closed {
		return ErrClosed
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	obs := e.obs
	ownsObs := false
	if obs == nil {
		var err error
		obs, err = observe.NewObserver(ctx, cfg.Observe)
		if err != nil {
			return fmt.Errorf("bootstrap: observer: %w", err)
		}
		ownsObs = true
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		if ownsObs {
			_ = obs.Shutdown(ctx)
		}
		return fmt.Errorf("bootstrap: middleware: %w", err)
	}

	e.cfg = cfg
	e.obs = obs
	e.ownsObs = ownsObs
	e.mw = mw
	e.registry = provider.NewRegistry()
	e.resolver = mapping.NewResolver()
	e.mat = materialize.New(e.resolver, e.registry,
		materialize.WithConfig(materialize.Config{
			Parallel:    cfg.Cache.Parallel,
			MaxParallel: cfg.Cache.MaxParallel,
		}),
		materialize.WithMiddleware(mw),
	)
	e.health = health.NewAggregator(health.AggregatorConfig{Timeout: cfg.Persistent.ConnectTimeout})
	e.initialized = true

	obs.Logger().Info(ctx, "environment initialized",
		observe.F("backend", cfg.Cache.Backend),
		observe.F("parallel", cfg.Cache.Parallel),
		observe.F("single_flight", cfg.Cache.SingleFlight),
	)
	return nil
}

func (e *Environment) ready() error {
	switch {
	case e.closed:
		return ErrClosed
	case !e.initialized:
		return ErrNotInitialized
	}
	return nil
}

// Config returns the configuration Init used, or nil before Init.
func (e *Environment) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Registry returns the shared provider registry.
func (e *Environment) Registry() *provider.Registry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry
}

// Resolver returns the shared descriptor resolver.
func (e *Environment) Resolver() *mapping.Resolver {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver
}

// Materializer returns the shared materializer.
func (e *Environment) Materializer() *materialize.Materializer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mat
}

// Health returns the health aggregator.
func (e *Environment) Health() *health.Aggregator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.health
}

// Logger returns the environment logger.
func (e *Environment) Logger() observe.Logger {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.obs == nil {
		return observe.NopLogger()
	}
	return e.obs.Logger()
}

// NewService creates a cache service bound to a fresh store of the
// configured backend. Persistent services get a health checker.
func (e *Environment) NewService(ctx context.Context) (*cache.Service, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return nil, err
	}

	var store cache.Store
	switch e.cfg.Cache.Backend {
	case config.BackendPersistent:
		ps, err := e.openStore(ctx)
		if err != nil {
			return nil, err
		}
		e.stores++
		name := fmt.Sprintf("persistent.%d", e.stores)
		e.health.Register(name, health.NewStoreChecker(name, ps))
		store = ps
	default:
		store = cache.NewMemoryStore()
	}

	policy := cache.DefaultPolicy()
	if !e.cfg.Cache.SingleFlight {
		policy = cache.UnsynchronizedPolicy()
	}
	svc, err := cache.NewService(store, e.mat,
		cache.WithPolicy(policy),
		cache.WithLogger(e.obs.Logger()),
		cache.WithMetrics(e.mw.Metrics()),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	e.services = append(e.services, svc)
	return svc, nil
}

// Close disposes every service and shuts down an observer built by Init.
// It is safe to call more than once.
func (e *Environment) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for _, svc := range e.services {
		if err := svc.Dispose(); err != nil && !errors.Is(err, cache.ErrDisposed) {
			errs = append(errs, err)
		}
	}
	e.services = nil
	if e.ownsObs && e.obs != nil {
		if err := e.obs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
