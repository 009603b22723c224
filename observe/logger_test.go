package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	log.Debug(ctx, "debug")
	log.Info(ctx, "info")
	log.Warn(ctx, "warn")
	log.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_WithView(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("debug", &buf).WithView(ViewMeta{
		View:    "orders.Summary",
		Sources: []string{"orders.Order"},
		Backend: "memory",
	})

	log.Info(context.Background(), "hello", F("count", 2))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["view.type"] != "orders.Summary" {
		t.Errorf("view.type = %v", e["view.type"])
	}
	if e["view.backend"] != "memory" {
		t.Errorf("view.backend = %v", e["view.backend"])
	}
	if e["count"] != float64(2) {
		t.Errorf("count = %v", e["count"])
	}
	if e["msg"] != "hello" {
		t.Errorf("msg = %v", e["msg"])
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("info", &buf)

	log.Info(context.Background(), "stored",
		F("params", map[string]any{"customerId": 7}),
		F("encryption_key", "hunter2"),
		F("fingerprint", 42),
	)

	e := decodeLines(t, &buf)[0]
	for _, key := range []string{"params", "encryption_key"} {
		if e[key] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", key, e[key])
		}
	}
	if e["fingerprint"] != float64(42) {
		t.Errorf("fingerprint = %v", e["fingerprint"])
	}
}

func TestLogger_ErrorValues(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Error(context.Background(), "boom", F("error", errors.New("disk full")))

	e := decodeLines(t, &buf)[0]
	if e["error"] != "disk full" {
		t.Errorf("error = %v, want %q", e["error"], "disk full")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"loud":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
