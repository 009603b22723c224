package materialize

import (
	"context"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/viewcache/mapping"
	"github.com/jonwraymond/viewcache/observe"
	"github.com/jonwraymond/viewcache/param"
	"github.com/jonwraymond/viewcache/provider"
)

// Config controls how source groups are fetched.
type Config struct {
	// Parallel runs source groups concurrently.
	Parallel bool

	// MaxParallel caps concurrent groups when Parallel is set. Zero means no cap.
	MaxParallel int
}

// Materializer builds views.
//
// Contract:
//   - Concurrency: safe for concurrent use once constructed.
//   - Errors: a failed build returns a nil view and a typed error from this
//     package or mapping.
//   - Ownership: each returned view is a fresh value owned by the caller.
type Materializer struct {
	resolver *mapping.Resolver
	registry *provider.Registry
	cfg      Config
	mw       *observe.Middleware
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithConfig sets the fan-out configuration.
func WithConfig(cfg Config) Option {
	return func(m *Materializer) { m.cfg = cfg }
}

// WithMiddleware wraps every build with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(m *Materializer) {
		if mw != nil {
			m.mw = mw
		}
	}
}

// New creates a Materializer reading descriptors from resolver and providers
// from registry.
func New(resolver *mapping.Resolver, registry *provider.Registry, opts ...Option) *Materializer {
	m := &Materializer{
		resolver: resolver,
		registry: registry,
		mw:       observe.NewNoopMiddleware(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the provider registry the materializer reads from.
func (m *Materializer) Registry() *provider.Registry { return m.registry }

// Resolver returns the descriptor resolver the materializer reads from.
func (m *Materializer) Resolver() *mapping.Resolver { return m.resolver }

// Meta returns telemetry metadata for a view type.
func (m *Materializer) Meta(view reflect.Type) observe.ViewMeta {
	if d, err := m.resolver.Resolve(view); err == nil {
		return metaOf(d)
	}
	return observe.ViewMeta{View: typeName(view)}
}

func metaOf(d *mapping.Descriptor) observe.ViewMeta {
	meta := observe.ViewMeta{View: typeName(d.View())}
	for _, s := range d.Sources() {
		meta.Sources = append(meta.Sources, typeName(s))
	}
	return meta
}

// Build materializes a value of the view type from params.
func (m *Materializer) Build(ctx context.Context, view reflect.Type, params param.Map) (any, error) {
	d, err := m.resolver.Resolve(view)
	if err != nil {
		return nil, err
	}

	build := m.mw.Wrap(func(ctx context.Context, _ observe.ViewMeta, params param.Map) (any, error) {
		return m.assemble(ctx, d, params)
	})
	return build(ctx, metaOf(d), params)
}

// BuildAs is Build for a view type known at compile time.
func BuildAs[V any](ctx context.Context, m *Materializer, params param.Map) (V, error) {
	var zero V
	v, err := m.Build(ctx, reflect.TypeFor[V](), params)
	if err != nil {
		return zero, err
	}
	return v.(V), nil
}

func (m *Materializer) assemble(ctx context.Context, d *mapping.Descriptor, params param.Map) (any, error) {
	view := reflect.New(d.View()).Elem()
	groups := d.Groups()

	if !m.cfg.Parallel || len(groups) < 2 {
		for _, g := range groups {
			if err := m.fill(ctx, d, view, g, params); err != nil {
				return nil, err
			}
		}
		return view.Interface(), nil
	}

	eg, gctx := errgroup.WithContext(ctx)
	if m.cfg.MaxParallel > 0 {
		eg.SetLimit(m.cfg.MaxParallel)
	}
	for _, g := range groups {
		eg.Go(func() error {
			return m.fill(gctx, d, view, g, params)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return view.Interface(), nil
}

// fill invokes the provider of one group and copies its fields onto view.
func (m *Materializer) fill(ctx context.Context, d *mapping.Descriptor, view reflect.Value, g *mapping.Group, params param.Map) error {
	entry, ok := m.registry.Lookup(g.Source)
	if !ok {
		return &ProviderMissingError{View: d.View(), Source: g.Source}
	}

	args, err := bindArgs(entry, g, params)
	if err != nil {
		return err
	}

	src, err := entry.Call(ctx, args)
	if err != nil {
		return &ProviderError{Provider: entry.DisplayName(), Err: err}
	}

	actual := reflect.TypeOf(src)
	if actual != g.Source {
		return &ContractViolationError{Provider: entry.DisplayName(), Expected: g.Source, Actual: actual}
	}
	rv := reflect.ValueOf(src)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return &ContractViolationError{Provider: entry.DisplayName(), Expected: g.Source, Actual: actual, Reason: "returned a nil " + typeName(actual)}
	}

	return g.Assign(view, rv)
}

// bindArgs orders parameter values by the provider's declared names. A group
// bound through an alias feeds the provider's single parameter from the alias.
func bindArgs(entry provider.Entry, g *mapping.Group, params param.Map) (provider.Args, error) {
	names := entry.Params
	if g.Param != "" {
		if len(entry.Params) != 1 {
			return nil, &ContractViolationError{
				Provider: entry.DisplayName(),
				Reason:   fmt.Sprintf("bound through parameter %q but declares %d parameters", g.Param, len(entry.Params)),
			}
		}
		names = []string{g.Param}
	}

	if missing := params.Missing(names); len(missing) > 0 {
		return nil, &ParameterMissingError{Provider: entry.DisplayName(), Names: missing}
	}

	args := make(provider.Args, len(names))
	for i, name := range names {
		args[i], _ = params.Lookup(name)
	}
	return args, nil
}

// Validate reports every problem that would make Build fail for reasons
// unrelated to parameter values: a missing descriptor, source groups without
// a provider, and alias bindings against multi-parameter providers. No
// provider is invoked.
func (m *Materializer) Validate(view reflect.Type) []error {
	d, err := m.resolver.Resolve(view)
	if err != nil {
		return []error{err}
	}

	var errs []error
	for _, g := range d.Groups() {
		entry, ok := m.registry.Lookup(g.Source)
		if !ok {
			errs = append(errs, &ProviderMissingError{View: view, Source: g.Source})
			continue
		}
		if g.Param != "" && len(entry.Params) != 1 {
			errs = append(errs, &ContractViolationError{
				Provider: entry.DisplayName(),
				Reason:   fmt.Sprintf("bound through parameter %q but declares %d parameters", g.Param, len(entry.Params)),
			})
		}
	}
	return errs
}
