package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestGetLevel(t *testing.T) {
	if got := GetLevel("warn"); got != "WARN" {
		t.Errorf("GetLevel(warn) = %q, expected WARN", got)
	}
	if got := GetLevel("trace"); got != "INFO" {
		t.Errorf("GetLevel(trace) = %q, expected INFO", got)
	}
}

func TestNewWritesJSONWithServiceAndTimeFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: "info", Service: "medidocs"})

	log.Debug("hidden")
	log.Info("Submission created", "submission_id", "s-1")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if record["service"] != "medidocs" {
		t.Errorf("service = %v, expected medidocs", record["service"])
	}
	if record["submission_id"] != "s-1" {
		t.Errorf("submission_id = %v, expected s-1", record["submission_id"])
	}
	ts, _ := record["time"].(string)
	if len(ts) != len("2006-01-02 15:04:05") {
		t.Errorf("time = %q, expected 2006-01-02 15:04:05 layout", ts)
	}
}
