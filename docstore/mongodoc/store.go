// Package mongodoc is the docstore driver for a MongoDB collection.
package mongodoc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jonwraymond/viewcache/docstore"
	"github.com/jonwraymond/viewcache/resilience"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "views"

// Store is a docstore.Store over one MongoDB collection. Sessions are driver
// sessions; every operation runs inside its session's context.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	closed atomic.Bool
}

type config struct {
	collection string
	retry      *resilience.Retry
	timeout    time.Duration
}

// Option configures Open.
type Option func(*config)

// WithCollection stores records in the named collection.
func WithCollection(name string) Option {
	return func(c *config) { c.collection = name }
}

// WithRetry sets the retry policy for connect and first ping.
func WithRetry(r *resilience.Retry) Option {
	return func(c *config) { c.retry = r }
}

// WithServerSelectionTimeout bounds how long each connect attempt waits for
// a server.
func WithServerSelectionTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Open connects to uri and prepares the collection in database.
func Open(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	if database == "" {
		return nil, errors.New("mongodoc: database name is required")
	}
	cfg := config{collection: DefaultCollection, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.retry == nil {
		cfg.retry = resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			Jitter:       true,
			RetryIf:      IsTransient,
		})
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(cfg.timeout))
	if err != nil {
		return nil, fmt.Errorf("mongodoc: connect: %w", err)
	}

	if err := cfg.retry.Execute(ctx, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodoc: ping: %w", err)
	}

	coll := client.Database(database).Collection(cfg.collection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "typeFingerprint", Value: 1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodoc: create index: %w", err)
	}

	return &Store{client: client, coll: coll}, nil
}

// IsTransient reports errors worth retrying on connect.
func IsTransient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// Driver returns "mongo".
func (s *Store) Driver() string { return "mongo" }

// Collection returns the backing collection.
func (s *Store) Collection() *mongo.Collection { return s.coll }

// OpenSession starts a driver session.
func (s *Store) OpenSession(ctx context.Context) (docstore.Session, error) {
	if s.closed.Load() {
		return nil, docstore.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongodoc: start session: %w", err)
	}
	return &session{id: uuid.NewString(), ms: ms, coll: s.coll}, nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return docstore.ErrClosed
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

var _ docstore.Store = (*Store)(nil)
