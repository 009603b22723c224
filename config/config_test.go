package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "viewcache.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != BackendMemory {
		t.Errorf("cache.backend = %q, want memory", cfg.Cache.Backend)
	}
	if !cfg.Cache.SingleFlight {
		t.Error("cache.single_flight default should be true")
	}
	if cfg.Persistent.Driver != DriverSQLite || cfg.Persistent.Server != DefaultSQLitePath {
		t.Errorf("persistent = %+v", cfg.Persistent)
	}
	if cfg.Persistent.ConnectTimeout != DefaultConnectTimeout {
		t.Errorf("connect_timeout = %v", cfg.Persistent.ConnectTimeout)
	}
	if cfg.Observe.ServiceName != DefaultServiceName {
		t.Errorf("observe.service_name = %q", cfg.Observe.ServiceName)
	}
	if cfg.Persistent.Compressed() || cfg.Persistent.Encrypted() {
		t.Error("payload transforms should be off by default")
	}
}

func TestLoad_Full(t *testing.T) {
	cfg, err := Load(writeConfig(t, `cache:
  backend: persistent
  parallel: true
  max_parallel: 4
  single_flight: false
persistent:
  driver: mongo
  server: mongodb://localhost:27017
  database: views
  collection: cached
  compression: zstd
  encryption:
    key: secretref:env:VIEWCACHE_KEY
  connect_timeout: 3s
observe:
  service_name: orders
  metrics:
    enabled: true
    exporter: prometheus
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != BackendPersistent || !cfg.Cache.Parallel || cfg.Cache.MaxParallel != 4 || cfg.Cache.SingleFlight {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	p := cfg.Persistent
	if p.Driver != DriverMongo || p.Database != "views" || p.Collection != "cached" {
		t.Errorf("persistent = %+v", p)
	}
	if !p.Compressed() || !p.Encrypted() || p.Encryption.Key != "secretref:env:VIEWCACHE_KEY" {
		t.Errorf("transforms: compressed=%v encrypted=%v key=%q", p.Compressed(), p.Encrypted(), p.Encryption.Key)
	}
	if p.ConnectTimeout != 3*time.Second {
		t.Errorf("connect_timeout = %v", p.ConnectTimeout)
	}
	if cfg.Observe.ServiceName != "orders" || cfg.Observe.Metrics.Exporter != "prometheus" {
		t.Errorf("observe = %+v", cfg.Observe)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"backend", "cache: {backend: redis}", "cache.backend"},
		{"max parallel", "cache: {max_parallel: -1}", "max_parallel"},
		{"driver", "persistent: {driver: postgres}", "persistent.driver"},
		{"mongo database", "persistent: {driver: mongo, server: 'mongodb://x', database: ''}", "persistent.database"},
		{"server", "persistent: {server: ''}", "persistent.server"},
		{"compression", "persistent: {compression: gzip}", "persistent.compression"},
		{"observe", "observe: {service_name: ''}", "observe"},
		{"log level", "observe: {logging: {level: loud}}", "observe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Parse() error = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParse_MemoryDriverNeedsNoServer(t *testing.T) {
	if _, err := Parse([]byte("persistent: {driver: memory, server: ''}")); err != nil {
		t.Errorf("Parse() error = %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
	if _, err := Load(writeConfig(t, "cache: [not, a, map]\n")); err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("Load() of malformed yaml error = %v", err)
	}
}
