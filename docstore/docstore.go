package docstore

import (
	"context"
	"errors"
)

var (
	// ErrClosed indicates use of a closed store.
	ErrClosed = errors.New("docstore: store is closed")

	// ErrSessionClosed indicates use of a closed session.
	ErrSessionClosed = errors.New("docstore: session is closed")
)

// Record is the persisted shape of one cached view.
type Record struct {
	ID              int64  `bson:"_id" json:"fingerprintId"`
	TypeFingerprint int32  `bson:"typeFingerprint" json:"typeFingerprint"`
	Payload         string `bson:"payload" json:"payload"`
}

// Store opens sessions against a backing database.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: OpenSession and Ping must honor cancellation.
//   - Ownership: callers own returned sessions and must Close them.
type Store interface {
	// Driver names the backend, e.g. "sqlite".
	Driver() string

	OpenSession(ctx context.Context) (Session, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Session is a unit of work against the store.
//
// Contract:
//   - Concurrency: a session is used by one goroutine at a time.
//   - Errors: Get reports absence with ok=false, not an error. After Close
//     every method returns ErrSessionClosed.
type Session interface {
	// ID identifies the session in logs.
	ID() string

	// Put inserts or replaces the record with r.ID.
	Put(ctx context.Context, r Record) error

	Get(ctx context.Context, id int64) (Record, bool, error)

	// FindByType returns every record with the type fingerprint.
	FindByType(ctx context.Context, typeFingerprint int32) ([]Record, error)

	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteAll removes every record and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// All returns every record ordered by ID.
	All(ctx context.Context) ([]Record, error)

	// CountByType returns the record count per type fingerprint.
	CountByType(ctx context.Context) (map[int32]int64, error)

	Close() error
}
