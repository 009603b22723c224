package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/jonwraymond/viewcache/cache"
	"github.com/jonwraymond/viewcache/docstore/sqlitedoc"
	"github.com/jonwraymond/viewcache/param"
	"github.com/jonwraymond/viewcache/persist"
	"github.com/jonwraymond/viewcache/transform"
)

type orderView struct {
	ID       int
	Customer string
}

type fixture struct {
	configPath string
	orderID    int64
}

// seed writes three orders and returns a config pointing at them.
func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "views.db")

	docs, err := sqlitedoc.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("sqlitedoc.Open() error = %v", err)
	}
	store := persist.New(docs, persist.WithPipeline(transform.Pipeline{Compression: transform.Zstd()}))
	view := reflect.TypeFor[orderView]()
	for i := 1; i <= 3; i++ {
		e := cache.Entry{Key: cache.NewKey(view, param.Of("id", i)), View: orderView{ID: i, Customer: "ada"}}
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	cfgPath := filepath.Join(dir, "viewcache.yaml")
	cfg := "persistent:\n  driver: sqlite\n  server: " + dbPath + "\n  compression: zstd\nobserve:\n  logging:\n    enabled: false\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return fixture{configPath: cfgPath, orderID: persist.Fingerprint(view, param.Of("id", 2))}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"stats", "show", "evict", "clean", "health"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, sub, err)
		}
	}
	if f := cmd.PersistentFlags().Lookup("config"); f == nil || f.Shorthand != "c" {
		t.Errorf("config flag = %+v", f)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "stats", "--format", "yaml")
	if ExitCode(err) != ExitCommandError {
		t.Errorf("exit code = %d, err = %v", ExitCode(err), err)
	}
}

func TestStats(t *testing.T) {
	f := seed(t)
	out, err := run(t, "stats", "--config", f.configPath, "--format", "json")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	var resp struct {
		Status string      `json:"status"`
		Data   []TypeCount `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	tf := persist.TypeFingerprint(reflect.TypeFor[orderView]())
	if resp.Status != "ok" || len(resp.Data) != 1 || resp.Data[0].TypeFingerprint != tf || resp.Data[0].Records != 3 {
		t.Errorf("stats = %+v", resp)
	}

	text, err := run(t, "stats", "-c", f.configPath)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(text, "3 records, 1 types") {
		t.Errorf("stats text = %q", text)
	}
}

func TestShow(t *testing.T) {
	f := seed(t)
	out, err := run(t, "show", "-c", f.configPath, "--id", strconv.FormatInt(f.orderID, 10))
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, `"Customer":"ada"`) || !strings.Contains(out, `"ID":2`) {
		t.Errorf("show = %q", out)
	}

	_, err = run(t, "show", "-c", f.configPath, "--id", "1")
	if ExitCode(err) != ExitFailure || !errors.Is(err, persist.ErrNotFound) {
		t.Errorf("show missing: exit %d, err = %v", ExitCode(err), err)
	}
	if _, err := run(t, "show", "-c", f.configPath); err == nil {
		t.Error("show without --id should fail")
	}
}

func TestEvict(t *testing.T) {
	f := seed(t)
	id := strconv.FormatInt(f.orderID, 10)

	if _, err := run(t, "evict", "-c", f.configPath, "--id", id); err != nil {
		t.Fatalf("evict --id error = %v", err)
	}
	if _, err := run(t, "evict", "-c", f.configPath, "--id", id); ExitCode(err) != ExitFailure {
		t.Errorf("second evict --id: exit %d, err = %v", ExitCode(err), err)
	}

	tf := strconv.FormatInt(int64(persist.TypeFingerprint(reflect.TypeFor[orderView]())), 10)
	out, err := run(t, "evict", "-c", f.configPath, "--type-fingerprint", tf, "--format", "json")
	if err != nil {
		t.Fatalf("evict --type-fingerprint error = %v", err)
	}
	if !strings.Contains(out, `"evicted":2`) {
		t.Errorf("evict = %q", out)
	}

	if _, err := run(t, "evict", "-c", f.configPath); err == nil {
		t.Error("evict without a target should fail")
	}
	if _, err := run(t, "evict", "-c", f.configPath, "--id", id, "--type-fingerprint", tf); err == nil {
		t.Error("evict with both targets should fail")
	}
}

func TestClean(t *testing.T) {
	f := seed(t)
	if _, err := run(t, "clean", "-c", f.configPath); ExitCode(err) != ExitCommandError {
		t.Errorf("clean without --yes: exit %d, err = %v", ExitCode(err), err)
	}
	if _, err := run(t, "clean", "-c", f.configPath, "--yes"); err != nil {
		t.Fatalf("clean error = %v", err)
	}
	out, err := run(t, "stats", "-c", f.configPath)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(out, "0 records") {
		t.Errorf("stats after clean = %q", out)
	}
}

func TestHealth(t *testing.T) {
	f := seed(t)
	out, err := run(t, "health", "-c", f.configPath)
	if err != nil {
		t.Fatalf("health error = %v", err)
	}
	if !strings.Contains(out, "healthy") {
		t.Errorf("health = %q", out)
	}
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "stats", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	if ExitCode(err) != ExitCommandError {
		t.Errorf("exit code = %d, err = %v", ExitCode(err), err)
	}
}
