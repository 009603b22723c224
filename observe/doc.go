// Package observe provides observability primitives for view materialization
// and cache lookups.
//
// It is a pure instrumentation library: no materialization, no storage, no
// I/O beyond exporter setup. The materializer wraps each build with
// Middleware; the cache service records lookup hits and misses through
// Metrics and logs through Logger.
package observe
