// Package bootstrap wires a cache environment from configuration.
//
// An Environment is constructed explicitly and initialized exactly once;
// there is no process-wide instance. Init builds the shared provider
// registry, descriptor resolver, materializer, observer and health
// aggregator. NewService then creates cache services, each bound to a fresh
// store of the configured backend.
//
//	env := bootstrap.New()
//	if err := env.Init(ctx, cfg); err != nil { ... }
//	defer env.Close(ctx)
//	_ = mapping.Define[OrderView](env.Resolver(), ...)
//	svc, err := env.NewService(ctx)
package bootstrap
