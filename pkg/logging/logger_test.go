package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// decodeLines parses every JSON log line written to buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Level = %q, want %q", cfg.Level, LevelInfo)
	}
	if cfg.Pretty {
		t.Error("Pretty = true, want JSON output by default")
	}
	if cfg.Output == nil {
		t.Error("Output = nil, want stderr")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{LevelOff, zerolog.Disabled},
		{"disabled", zerolog.Disabled},
		{" WARNING ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// Each level of the guideline at the bottom of logger.go, emitted the way
// the client does for a task.
func TestSetup_TaskEventsByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		visible []string
		hidden  []string
	}{
		{
			name:    "debug shows classification",
			level:   LevelDebug,
			visible: []string{"Error classified", "Cloud request completed", "Cloud request failed", "Request execution panicked"},
		},
		{
			name:    "info shows completed requests",
			level:   LevelInfo,
			visible: []string{"Cloud request completed", "Cloud request failed"},
			hidden:  []string{"Error classified"},
		},
		{
			name:    "warn shows failures only",
			level:   LevelWarn,
			visible: []string{"Cloud request failed", "Request execution panicked"},
			hidden:  []string{"Error classified", "Cloud request completed"},
		},
		{
			name:    "error shows panics only",
			level:   LevelError,
			visible: []string{"Request execution panicked"},
			hidden:  []string{"Cloud request failed", "Cloud request completed"},
		},
		{
			name:   "off hides everything",
			level:  LevelOff,
			hidden: []string{"Request execution panicked", "Cloud request completed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: tt.level, Output: buf})
			logger := ForTask(NewLogger("cloud-client"), "task-1", "get_founds")

			logger.Debug().Str("outcome", "network_error").Msg("Error classified")
			logger.Info().Str("outcome", "ok").Int("code", 0).Msg("Cloud request completed")
			logger.Warn().Str("outcome", "network_error").Msg("Cloud request failed")
			logger.Error().Str("panic", "boom").Msg("Request execution panicked")

			output := buf.String()
			for _, msg := range tt.visible {
				if !strings.Contains(output, msg) {
					t.Errorf("output missing %q at level %s", msg, tt.level)
				}
			}
			for _, msg := range tt.hidden {
				if strings.Contains(output, msg) {
					t.Errorf("output contains %q at level %s", msg, tt.level)
				}
			}
		})
	}

	Setup(Config{Level: LevelInfo, Output: &bytes.Buffer{}})
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("auth-store")
	logger.Info().Str("key", "lostnfound:auth_data").Msg("Auth data stored")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	if lines[0]["component"] != "auth-store" {
		t.Errorf("component = %v, want auth-store", lines[0]["component"])
	}
	if lines[0]["message"] != "Auth data stored" {
		t.Errorf("message = %v, want Auth data stored", lines[0]["message"])
	}
	if _, ok := lines[0]["time"]; !ok {
		t.Error("log line has no timestamp")
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})

	logger := NewLogger("cloud-dispatch")
	logger.Info().Str("route", "get_users").Msg("Dispatching request")

	output := buf.String()
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("pretty output looks like JSON: %q", output)
	}
	if !strings.Contains(output, "Dispatching request") {
		t.Errorf("output = %q, want the message", output)
	}
}

func TestSetup_NilOutputDefaultsToStderr(t *testing.T) {
	Setup(Config{Level: LevelInfo})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level = %v, want info", zerolog.GlobalLevel())
	}
}

func TestForTask(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelDebug, Output: buf})

	logger := ForTask(NewLogger("cloud-client"), "task-42", "get_founds")
	logger.Info().Str("outcome", "auth_error").Int("code", 5).Msg("Cloud request completed")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}

	expected := map[string]any{
		"component": "cloud-client",
		"task_id":   "task-42",
		"route":     "get_founds",
		"outcome":   "auth_error",
		"code":      float64(5),
		"level":     "info",
	}
	for key, want := range expected {
		if got := lines[0][key]; got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}
