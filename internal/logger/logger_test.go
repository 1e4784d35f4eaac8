package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
		Level:       slog.LevelInfo,
	})

	log.Info("session created", "account_id", int64(42))

	out := buf.String()
	if !strings.Contains(out, `"msg":"session created"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"account_id":42`) {
		t.Errorf("expected attribute in output, got %q", out)
	}
}

func TestPrettyHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Format:      "pretty",
		Environment: "development",
		Level:       slog.LevelWarn,
	})

	log.Debug("not shown")
	log.Info("not shown either")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Errorf("records below level leaked: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn record in output: %q", out)
	}
}

func TestPrettyHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "pretty",
		Level:  slog.LevelInfo,
	})

	log.WithField("url", "https://example.com/story/1").Info("signals fetched", "tags", 3)

	out := buf.String()
	if !strings.Contains(out, "url=https://example.com/story/1") {
		t.Errorf("expected pre-set attr in output: %q", out)
	}
	if !strings.Contains(out, "tags=3") {
		t.Errorf("expected call attr in output: %q", out)
	}
}
