// Package provider registers the functions that produce source objects.
//
// Each source type has at most one provider. A provider declares its
// parameter names in positional order; the materializer resolves them from a
// param.Map and invokes the provider with the resulting argument list.
//
// Providers may be bound to a caller. Bound fixes the caller at registration
// time; Lazy invokes a factory on every call and never caches the result.
package provider
