// Package param provides the named parameter map used to invoke source
// providers and to key cached views.
//
// Names bind to provider parameters case-insensitively. Equality between two
// maps is set equality over key/value pairs and does not depend on insertion
// order; Hash and Canonical are consistent with that equality.
package param
