// Package transform provides reversible string transforms for persisted
// payloads.
//
// A Pair holds a forward function and its inverse; a stage runs only when
// both are set, so a half-configured pair silently disables itself. Pipeline
// encodes by compressing then encrypting, and decodes in the inverse order.
// Transforms must be fully reversed: Decode(Encode(s)) == s.
package transform
