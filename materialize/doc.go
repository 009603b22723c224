// Package materialize assembles view values from registered source providers.
//
// A Materializer resolves the mapping descriptor of a view type, invokes one
// provider per source group with arguments taken from a param.Map, checks
// that each provider honored its declared source type, and copies the bound
// fields onto a fresh view value. Groups run sequentially or, with
// Config.Parallel, on an errgroup that joins before Build returns. Groups
// write disjoint field sets, which mapping.Compile guarantees.
//
// A failed build returns no value: the partially assembled view is dropped.
package materialize
