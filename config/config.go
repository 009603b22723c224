package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/viewcache/observe"
)

// ErrInvalid indicates the configuration failed validation.
var ErrInvalid = errors.New("config: invalid")

// Backends.
const (
	BackendMemory     = "memory"
	BackendPersistent = "persistent"
)

// Document store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Default values.
const (
	DefaultServiceName    = "viewcache"
	DefaultSQLitePath     = "viewcache.db"
	DefaultDatabase       = "viewcache"
	DefaultConnectTimeout = 10 * time.Second
)

// Config is the root configuration.
type Config struct {
	Cache      CacheConfig      `yaml:"cache"`
	Persistent PersistentConfig `yaml:"persistent"`
	Observe    observe.Config   `yaml:"observe"`
}

// CacheConfig configures services and the materializer.
type CacheConfig struct {
	// Backend is one of: memory | persistent.
	Backend string `yaml:"backend"`

	// Parallel builds independent source groups concurrently.
	Parallel bool `yaml:"parallel"`

	// MaxParallel bounds concurrent provider calls per build; 0 is unbounded.
	MaxParallel int `yaml:"max_parallel"`

	// SingleFlight collapses concurrent builds of one key (default true).
	SingleFlight bool `yaml:"single_flight"`
}

// PersistentConfig configures the persistent backend.
type PersistentConfig struct {
	// Driver is one of: sqlite | mongo | memory.
	Driver string `yaml:"driver"`

	// Server is the SQLite file path or the MongoDB URI.
	Server string `yaml:"server"`

	// Database is the MongoDB database name.
	Database string `yaml:"database"`

	// Collection overrides the table or collection name.
	Collection string `yaml:"collection"`

	// Compression is one of: none | zstd.
	Compression string `yaml:"compression"`

	Encryption EncryptionConfig `yaml:"encryption"`

	// ConnectTimeout bounds driver connect and ping.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// EncryptionConfig configures payload encryption. An empty key disables it.
type EncryptionConfig struct {
	// Key is a raw key, a ${ENV} expansion or a secretref.
	Key string `yaml:"key"`
}

// Compressed reports whether payloads are compressed.
func (p PersistentConfig) Compressed() bool { return p.Compression == "zstd" }

// Encrypted reports whether payloads are encrypted.
func (p PersistentConfig) Encrypted() bool { return p.Encryption.Key != "" }

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:      BackendMemory,
			SingleFlight: true,
		},
		Persistent: PersistentConfig{
			Driver:         DriverSQLite,
			Server:         DefaultSQLitePath,
			Database:       DefaultDatabase,
			Compression:    "none",
			ConnectTimeout: DefaultConnectTimeout,
		},
		Observe: observe.Config{
			ServiceName: DefaultServiceName,
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendPersistent:
	default:
		return fmt.Errorf("%w: cache.backend %q unknown: want memory|persistent", ErrInvalid, c.Cache.Backend)
	}
	if c.Cache.MaxParallel < 0 {
		return fmt.Errorf("%w: cache.max_parallel must not be negative", ErrInvalid)
	}

	p := c.Persistent
	switch p.Driver {
	case DriverSQLite, DriverMemory:
	case DriverMongo:
		if p.Database == "" {
			return fmt.Errorf("%w: persistent.database is required for mongo", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: persistent.driver %q unknown: want sqlite|mongo|memory", ErrInvalid, p.Driver)
	}
	if p.Driver != DriverMemory && p.Server == "" {
		return fmt.Errorf("%w: persistent.server is required for %s", ErrInvalid, p.Driver)
	}
	switch p.Compression {
	case "", "none", "zstd":
	default:
		return fmt.Errorf("%w: persistent.compression %q unknown: want none|zstd", ErrInvalid, p.Compression)
	}
	if p.ConnectTimeout < 0 {
		return fmt.Errorf("%w: persistent.connect_timeout must not be negative", ErrInvalid)
	}

	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: observe: %w", ErrInvalid, err)
	}
	return nil
}
