package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSanitizingHandlerMasksKeys verifies that attributes with sensitive key
// names never reach the output in clear.
func TestSanitizingHandlerMasksKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"cookie key", "cookie", "mrcu=supersecret"},
		{"authorization key", "authorization", "Bearer abc123"},
		{"password key", "password", "hunter2"},
		{"case-insensitive key", "Cookie", "session=xyz"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewJSONLogger(&buf, true)
			logger.Info("request", tt.key, tt.value)

			out := buf.String()
			if strings.Contains(out, tt.value) {
				t.Errorf("sensitive value %q leaked into log output: %s", tt.value, out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("expected mask %q in output: %s", MaskValue, out)
			}
		})
	}
}

// TestSanitizingHandlerMasksPatterns verifies value-based masking for
// credential-shaped strings under arbitrary keys.
func TestSanitizingHandlerMasksPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{"bearer token", "Bearer eyJhbGciOi"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"session cookie pair", "mrcu=abcdef123456"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewJSONLogger(&buf, true)
			logger.Info("request", "header", tt.value)

			if strings.Contains(buf.String(), tt.value) {
				t.Errorf("credential-shaped value %q leaked into log output", tt.value)
			}
		})
	}
}

// TestSanitizingHandlerKeepsOrdinaryAttrs verifies that normal attributes
// pass through untouched.
func TestSanitizingHandlerKeepsOrdinaryAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)
	logger.Info("committed question", "id", 12345, "category", "Наука и техника")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if record["category"] != "Наука и техника" {
		t.Errorf("expected category attribute to pass through, got %v", record["category"])
	}
	if record["id"] != float64(12345) {
		t.Errorf("expected id attribute to pass through, got %v", record["id"])
	}
}

// TestLoggerLevels verifies the verbose switch: debug records only appear in
// verbose mode, warnings always do.
func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses debug and info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		out := buf.String()
		if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
			t.Errorf("expected debug/info to be suppressed, got: %s", out)
		}
		if !strings.Contains(out, "warn message") {
			t.Errorf("expected warning to appear, got: %s", out)
		}
	})

	t.Run("verbose level passes debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("debug message")

		if !strings.Contains(buf.String(), "debug message") {
			t.Errorf("expected debug to appear in verbose mode, got: %s", buf.String())
		}
	})
}

// TestSanitizingHandlerWithAttrs verifies that pre-bound attributes are
// sanitized too.
func TestSanitizingHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true).With(slog.String("cookie", "mrcu=secret"))
	logger.Info("request")

	if strings.Contains(buf.String(), "secret") {
		t.Errorf("pre-bound sensitive attribute leaked: %s", buf.String())
	}
}
