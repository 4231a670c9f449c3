package logger_i

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogWithSource(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	previous := slog.Default()
	slog.SetDefault(slog.New(handler))
	t.Cleanup(func() { slog.SetDefault(previous) })

	log := NewLogger("TestSection")
	log.Error("something broke", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "something broke") {
		t.Fatalf("Expected the message in the output, got %q", out)
	}
	if !strings.Contains(out, `"component":"TestSection"`) {
		t.Errorf("Expected the component attribute, got %q", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("Expected the extra attribute, got %q", out)
	}
	// the captured caller should be this test, not the logger internals
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("Expected the caller's source location, got %q", out)
	}
}

func TestWithKeepsAttributes(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	log := NewLogger("Base").With("request_id", "r-1")
	log.Warn("slow request")

	out := buf.String()
	if !strings.Contains(out, `"component":"Base"`) || !strings.Contains(out, `"request_id":"r-1"`) {
		t.Errorf("Expected both attributes in the output, got %q", out)
	}
}
