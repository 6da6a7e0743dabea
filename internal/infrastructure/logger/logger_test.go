package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"WARNING": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}

	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	log.Info().Str("subject_id", "emp-1").Msg("rebuilt")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}

	if line["message"] != "rebuilt" {
		t.Fatalf("unexpected message: %v", line["message"])
	}
	if line["subject_id"] != "emp-1" {
		t.Fatalf("unexpected subject_id: %v", line["subject_id"])
	}
	if line["service"] != "ledgerreplay" {
		t.Fatalf("unexpected service: %v", line["service"])
	}
	if _, ok := line["time"]; !ok {
		t.Fatalf("expected timestamp field")
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn message missing: %q", out)
	}
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "debug", Format: "console"}, &buf)

	log.Debug().Msg("console line")

	out := buf.String()
	if !strings.Contains(out, "console line") {
		t.Fatalf("expected console output, got %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("console output should not be JSON: %q", out)
	}
}
