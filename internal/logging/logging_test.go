package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "JSON", Output: &buf})

	log.With(String("component", "catalog")).Info(context.Background(), "fetched",
		Int("records", 3),
		Strings("missing", []string{"TIANHE"}),
		Err(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec["msg"] != "fetched" {
		t.Fatalf("msg = %v, want fetched", rec["msg"])
	}
	if rec["component"] != "catalog" {
		t.Fatalf("component = %v, want catalog", rec["component"])
	}
	if rec["records"] != float64(3) {
		t.Fatalf("records = %v, want 3", rec["records"])
	}
	if rec["error"] != "boom" {
		t.Fatalf("error = %v, want boom", rec["error"])
	}
	if m, ok := rec["missing"].([]any); !ok || len(m) != 1 || m[0] != "TIANHE" {
		t.Fatalf("missing = %v, want [TIANHE]", rec["missing"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	log.Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn not logged: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestErrNil(t *testing.T) {
	if f := Err(nil); f.Key != "error" || f.Value != "" {
		t.Fatalf("Err(nil) = %+v", f)
	}
}

func TestForRequest(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, log, id := ForRequest(context.Background(), base, "")
	if id == "" || RequestID(ctx) != id {
		t.Fatalf("RequestID = %q, want generated %q", RequestID(ctx), id)
	}
	if FromContext(ctx, nil) != log {
		t.Fatalf("FromContext should return the request logger")
	}

	log.Info(ctx, "hello")
	if !strings.Contains(buf.String(), `"request_id":"`+id+`"`) {
		t.Fatalf("log line missing request id: %q", buf.String())
	}

	ctx, _, id = ForRequest(context.Background(), nil, "abc-123")
	if id != "abc-123" || RequestID(ctx) != "abc-123" {
		t.Fatalf("incoming id not kept: %q", id)
	}
}

func TestFromContextFallback(t *testing.T) {
	base := Noop()
	if got := FromContext(context.Background(), base); got != base {
		t.Fatalf("FromContext without request logger = %v, want fallback", got)
	}
	if FromContext(context.Background(), nil) == nil {
		t.Fatalf("nil fallback should be replaced by Noop")
	}
	if RequestID(context.Background()) != "" {
		t.Fatalf("RequestID on empty context should be empty")
	}
}
