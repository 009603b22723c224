package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonwraymond/viewcache/config"
	"github.com/jonwraymond/viewcache/docstore"
	"github.com/jonwraymond/viewcache/docstore/mongodoc"
	"github.com/jonwraymond/viewcache/docstore/sqlitedoc"
	"github.com/jonwraymond/viewcache/observe"
	"github.com/jonwraymond/viewcache/persist"
	"github.com/jonwraymond/viewcache/transform"
)

// OpenStore opens a standalone persistent store from the configuration,
// as used by maintenance tools. The caller closes it.
func (e *Environment) OpenStore(ctx context.Context) (*persist.Store, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.openStore(ctx)
}

func (e *Environment) openStore(ctx context.Context) (*persist.Store, error) {
	pc := e.cfg.Persistent
	pipeline, err := Pipeline(ctx, pc, e.secrets)
	if err != nil {
		return nil, err
	}
	docs, err := openDocs(ctx, pc)
	if err != nil {
		return nil, err
	}
	e.obs.Logger().Debug(ctx, "opened persistent store",
		observe.F("driver", docs.Driver()),
		observe.F("stages", pipeline.Stages()),
	)
	return persist.New(docs,
		persist.WithPipeline(pipeline),
		persist.WithLogger(e.obs.Logger()),
	), nil
}

func openDocs(ctx context.Context, pc config.PersistentConfig) (docstore.Store, error) {
	if pc.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pc.ConnectTimeout)
		defer cancel()
	}

	switch pc.Driver {
	case config.DriverSQLite:
		var opts []sqlitedoc.Option
		if pc.Collection != "" {
			opts = append(opts, sqlitedoc.WithTable(pc.Collection))
		}
		return sqlitedoc.Open(ctx, pc.Server, opts...)
	case config.DriverMongo:
		opts := []mongodoc.Option{mongodoc.WithServerSelectionTimeout(pc.ConnectTimeout)}
		if pc.Collection != "" {
			opts = append(opts, mongodoc.WithCollection(pc.Collection))
		}
		return mongodoc.Open(ctx, pc.Server, pc.Database, opts...)
	case config.DriverMemory:
		return docstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: persistent.driver %q", config.ErrInvalid, pc.Driver)
	}
}

// ValueResolver resolves secret-bearing configuration values.
type ValueResolver interface {
	ResolveValue(ctx context.Context, value string) (string, error)
}

// Pipeline builds the payload transform pipeline: zstd when compression is
// "zstd", XChaCha20-Poly1305 when an encryption key is configured. The key
// is resolved through secrets and parsed with transform.ParseKey.
func Pipeline(ctx context.Context, pc config.PersistentConfig, secrets ValueResolver) (transform.Pipeline, error) {
	var p transform.Pipeline
	if pc.Compressed() {
		p.Compression = transform.Zstd()
	}
	if !pc.Encrypted() {
		return p, nil
	}

	raw, err := secrets.ResolveValue(ctx, pc.Encryption.Key)
	if err != nil {
		return transform.Pipeline{}, fmt.Errorf("bootstrap: encryption key: %w", err)
	}
	key, err := transform.ParseKey(raw)
	if err != nil {
		return transform.Pipeline{}, fmt.Errorf("bootstrap: encryption key: %w", err)
	}
	p.Encryption, err = transform.XChaCha20(key)
	if err != nil {
		return transform.Pipeline{}, fmt.Errorf("bootstrap: encryption key: %w", err)
	}
	return p, nil
}
