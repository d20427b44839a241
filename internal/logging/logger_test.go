// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("%q: unexpected err=%v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got=%v want=%v", in, got, want)
		}
	}

	if _, err := ParseLevel("trace"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, slog.LevelInfo, FormatJSON))

	log.Debug("hidden")
	log.Info("API URL set", "url", "http://x/data.json")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "API URL set" || rec["url"] != "http://x/data.json" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestHandler_TextAndPrettyFilterLevel(t *testing.T) {
	for _, format := range []string{FormatText, FormatPretty, ""} {
		var buf bytes.Buffer
		log := slog.New(newHandler(&buf, slog.LevelWarn, format))

		log.Info("quiet")
		log.Warn("no valid weather data available")

		out := buf.String()
		if strings.Contains(out, "quiet") {
			t.Fatalf("%q: info record leaked at warn level: %q", format, out)
		}
		if !strings.Contains(out, "no valid weather data available") {
			t.Fatalf("%q: warn record missing: %q", format, out)
		}
	}
}
