package provider

import (
	"context"
	"reflect"
)

// Args are provider arguments in declared parameter order.
type Args []any

// Invoker produces a source object from a resolved caller and arguments.
type Invoker func(ctx context.Context, caller any, args Args) (any, error)

// Entry is a registered provider.
type Entry struct {
	// Source is the declared type of the object the provider returns.
	Source reflect.Type

	// Name identifies the provider in error messages. Defaults to the source type.
	Name string

	// Params lists parameter names in positional order.
	Params []string

	Invoke Invoker

	// Caller is passed to Invoke when set.
	Caller any

	// CallerFactory supplies the caller on every call when Caller is nil.
	CallerFactory func() any
}

// Named returns a copy of e with the given name.
func (e Entry) Named(name string) Entry {
	e.Name = name
	return e
}

// DisplayName returns Name, or the source type when Name is empty.
func (e Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return typeName(e.Source)
}

// ResolveCaller returns the fixed caller or, failing that, a fresh one from
// the factory.
func (e Entry) ResolveCaller() any {
	if e.Caller == nil && e.CallerFactory != nil {
		return e.CallerFactory()
	}
	return e.Caller
}

// Call resolves the caller and invokes the provider.
func (e Entry) Call(ctx context.Context, args Args) (any, error) {
	return e.Invoke(ctx, e.ResolveCaller(), args)
}

// Caller binds a provider to a receiver of type C.
type Caller[C any] struct {
	fixed   C
	factory func() C
}

// Bound fixes the caller.
func Bound[C any](c C) Caller[C] {
	return Caller[C]{fixed: c}
}

// Lazy resolves the caller through factory on every call.
func Lazy[C any](factory func() C) Caller[C] {
	return Caller[C]{factory: factory}
}

// NewFunc creates a provider without a caller.
func NewFunc[S any](params []string, fn func(ctx context.Context, args Args) (S, error)) Entry {
	return Entry{
		Source: reflect.TypeFor[S](),
		Params: params,
		Invoke: func(ctx context.Context, _ any, args Args) (any, error) {
			return fn(ctx, args)
		},
	}
}

// NewMethod creates a provider invoked on a caller of type C. fn has the
// shape of a method expression, so (*Repo).Invoice can be passed directly.
func NewMethod[C, S any](caller Caller[C], params []string, fn func(c C, ctx context.Context, args Args) (S, error)) Entry {
	e := Entry{
		Source: reflect.TypeFor[S](),
		Params: params,
		Invoke: func(ctx context.Context, c any, args Args) (any, error) {
			cc, ok := c.(C)
			if !ok {
				return nil, &ParameterTypeError{Param: "caller", Index: -1, Want: reflect.TypeFor[C](), Got: reflect.TypeOf(c)}
			}
			return fn(cc, ctx, args)
		},
	}
	if caller.factory != nil {
		factory := caller.factory
		e.CallerFactory = func() any { return factory() }
	} else {
		e.Caller = caller.fixed
	}
	return e
}

// Func1 adapts a typed single-parameter function.
func Func1[A, S any](p1 string, fn func(context.Context, A) (S, error)) Entry {
	return NewFunc([]string{p1}, func(ctx context.Context, args Args) (S, error) {
		var zero S
		a, err := arg[A](args, 0, p1)
		if err != nil {
			return zero, err
		}
		return fn(ctx, a)
	})
}

// Func2 adapts a typed two-parameter function.
func Func2[A, B, S any](p1, p2 string, fn func(context.Context, A, B) (S, error)) Entry {
	return NewFunc([]string{p1, p2}, func(ctx context.Context, args Args) (S, error) {
		var zero S
		a, err := arg[A](args, 0, p1)
		if err != nil {
			return zero, err
		}
		b, err := arg[B](args, 1, p2)
		if err != nil {
			return zero, err
		}
		return fn(ctx, a, b)
	})
}

// Func3 adapts a typed three-parameter function.
func Func3[A, B, C, S any](p1, p2, p3 string, fn func(context.Context, A, B, C) (S, error)) Entry {
	return NewFunc([]string{p1, p2, p3}, func(ctx context.Context, args Args) (S, error) {
		var zero S
		a, err := arg[A](args, 0, p1)
		if err != nil {
			return zero, err
		}
		b, err := arg[B](args, 1, p2)
		if err != nil {
			return zero, err
		}
		c, err := arg[C](args, 2, p3)
		if err != nil {
			return zero, err
		}
		return fn(ctx, a, b, c)
	})
}

// ArgAs returns args[i] as T. A nil argument yields the zero T.
func ArgAs[T any](args Args, i int) (T, error) {
	return arg[T](args, i, "")
}

func arg[T any](args Args, i int, name string) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, &ParameterTypeError{Param: name, Index: i, Want: reflect.TypeFor[T]()}
	}
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, &ParameterTypeError{Param: name, Index: i, Want: reflect.TypeFor[T](), Got: reflect.TypeOf(args[i])}
	}
	return v, nil
}
