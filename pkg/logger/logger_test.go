package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, FormatJSON); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = Init() }()

	Named("service").Named("worker").Info(context.Background(), "stored",
		String("event_id", "e1"),
		Int("count", 2),
		Bool("strict", true),
		Error(errors.New("boom")),
	)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "stored" {
		t.Errorf("unexpected msg: %v", line["msg"])
	}
	if line["logger"] != "service.worker" {
		t.Errorf("unexpected logger name: %v", line["logger"])
	}
	if line["strict"] != true {
		t.Errorf("unexpected strict: %v", line["strict"])
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestInitWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, "TEXT"); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = Init() }()

	Get().Warn(context.Background(), "queue full", String("reason", "capacity"))
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "reason=capacity") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestInitWithFormat_Unknown(t *testing.T) {
	if err := InitWithFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, FormatText); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() {
		_ = SetLevelString("info")
		_ = Init()
	}()

	if err := SetLevelString("error"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at error level, got %q", buf.String())
	}

	if err := SetLevelString(" Warning "); err != nil {
		t.Errorf("warning should parse: %v", err)
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestGet_LazyInit(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get should never return nil")
	}
	if Slog() == nil {
		t.Fatal("Slog should never return nil")
	}
	if err := Sync(); err != nil {
		t.Errorf("sync: %v", err)
	}
}
