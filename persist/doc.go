// Package persist is the document-store implementation of cache.Store.
//
// Views are JSON-encoded, passed through an optional transform.Pipeline
// (compress then encrypt) and written as docstore.Record values keyed by a
// fingerprint of (view type, parameters). Reads invert the pipeline.
//
// Every operation opens its own docstore session and closes it before
// returning. Two distinct keys whose fingerprints collide share a record;
// collisions are not detected.
//
// Unlike cache.MemoryStore, evicting a key that has no record fails with
// NotFoundError.
package persist
