// Package docstore defines the session-oriented document store the
// persistent cache writes to, plus an in-memory driver.
//
// Every record is {fingerprintId, typeFingerprint, payload}. Callers open a
// Session immediately before one logical operation and close it on every
// exit path. Drivers live in subpackages: sqlitedoc for an embedded SQLite
// file and mongodoc for a MongoDB database.
package docstore
