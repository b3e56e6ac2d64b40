package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(parseLevel("info")).With().Timestamp().Logger()

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got %q: %v", buf.String(), err)
	}

	if entry["message"] != "hello" || entry["component"] != "test" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(parseLevel("error"))

	log.Info().Msg("suppressed")

	if buf.Len() != 0 {
		t.Fatalf("expected info log to be suppressed at error level, got %q", buf.String())
	}
}
