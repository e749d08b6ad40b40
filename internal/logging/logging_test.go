package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("info") || !ValidLevel(" ERROR ") {
		t.Error("expected known levels to be valid")
	}
	if ValidLevel("trace") {
		t.Error("expected unknown level to be invalid")
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "INFO", "json")

	logger.Debug("hidden")
	logger.Info("visible", "channel", "CNN")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if record["msg"] != "visible" || record["channel"] != "CNN" {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "TEXT")

	logger.Debug("details", "k", "v")

	if !strings.Contains(buf.String(), "msg=details") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestLogCircuitBreakerChange(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "INFO", "json")

	LogCircuitBreakerChange(logger, "CLOSED", "OPEN", "remote")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if record["event"] != string(EventCircuitBreakerChange) {
		t.Errorf("event = %v", record["event"])
	}
	if record["old_state"] != "CLOSED" || record["new_state"] != "OPEN" || record["source"] != "remote" {
		t.Errorf("unexpected record: %v", record)
	}
	if record["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", record["level"])
	}

	LogCircuitBreakerChange(nil, "OPEN", "CLOSED", "")
}
