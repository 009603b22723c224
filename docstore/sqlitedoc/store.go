// Package sqlitedoc is the docstore driver for an embedded SQLite file.
package sqlitedoc

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/jonwraymond/viewcache/docstore"
	"github.com/jonwraymond/viewcache/resilience"
)

//go:embed schema.sql
var schemaSQL string

// DefaultTable is the table used when none is configured.
const DefaultTable = "views"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidTable indicates a table name that is not a plain identifier.
var ErrInvalidTable = errors.New("sqlitedoc: invalid table name")

// Store is a docstore.Store backed by one SQLite table. Each session holds
// its own connection from the pool.
type Store struct {
	db    *sql.DB
	table string
	q     queries
	open  atomic.Int64
}

type options struct {
	table    string
	maxConns int
	retry    *resilience.Retry
}

// Option configures Open.
type Option func(*options)

// WithTable stores records in the named table.
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

// WithMaxConns caps the connection pool, and so the number of sessions open
// at once.
func WithMaxConns(n int) Option {
	return func(o *options) { o.maxConns = n }
}

// WithRetry sets the retry policy for busy or locked errors while opening.
func WithRetry(r *resilience.Retry) Option {
	return func(o *options) { o.retry = r }
}

// Open creates or opens the database at path and applies the schema.
//
// Every connection is configured with:
//   - WAL journal for reads concurrent with the single writer
//   - NORMAL synchronous mode
//   - a 5-second busy timeout
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{table: DefaultTable, maxConns: 4}
	for _, opt := range opts {
		opt(&o)
	}
	if !tableName.MatchString(o.table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, o.table)
	}
	if o.retry == nil {
		o.retry = resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 50 * time.Millisecond,
			Jitter:       true,
			RetryIf:      IsBusy,
		})
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlitedoc: open database: %w", err)
	}
	db.SetMaxOpenConns(o.maxConns)
	db.SetMaxIdleConns(o.maxConns)

	schema := strings.ReplaceAll(schemaSQL, "{{table}}", o.table)
	err = o.retry.Execute(ctx, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, schema)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitedoc: apply schema: %w", err)
	}

	return &Store{db: db, table: o.table, q: newQueries(o.table)}, nil
}

func dsn(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	return "file:" + path + "?" + params.Encode()
}

// IsBusy reports whether err is SQLite's busy or locked condition.
func IsBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// Driver returns "sqlite".
func (s *Store) Driver() string { return "sqlite" }

// Table returns the table records are stored in.
func (s *Store) Table() string { return s.table }

// OpenSession reserves a pooled connection for the session.
func (s *Store) OpenSession(ctx context.Context) (docstore.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
			return nil, docstore.ErrClosed
		}
		return nil, fmt.Errorf("sqlitedoc: open session: %w", err)
	}
	s.open.Add(1)
	return &session{id: uuid.NewString(), conn: conn, q: s.q, store: s}, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// OpenSessions returns the number of sessions opened and not yet closed.
func (s *Store) OpenSessions() int64 { return s.open.Load() }

var _ docstore.Store = (*Store)(nil)
