// Package cache keys built views by (view type, parameters) and serves them
// through a Service.
//
// A Key compares parameter maps as sets of pairs, so insertion order never
// matters. Store is the storage contract; MemoryStore is the volatile
// in-process implementation and persist.Store the document-store one.
//
// Service is the façade callers use: Get looks the key up in the store and,
// on a miss, asks the materializer to build the view, inserts it and returns
// it. Exists is Get followed by a nil check, so it builds and caches on a
// miss too. With Policy.SingleFlight, concurrent misses for equal keys share
// one build.
package cache
