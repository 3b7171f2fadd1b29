package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion verifies the version fallback chain.
func TestGetVersion(t *testing.T) {
	if v := getVersion(); v == "" {
		t.Error("expected non-empty version string")
	}
}

// TestVersionCmd verifies the version command output.
func TestVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "otvetgrab version") {
		t.Errorf("expected version header, got %q", out)
	}
	if !strings.Contains(out, "commit:") || !strings.Contains(out, "built:") {
		t.Errorf("expected commit and build date lines, got %q", out)
	}
}

// TestLdflagsOverride verifies that build-time values take priority.
func TestLdflagsOverride(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { version, commit, date = origVersion, origCommit, origDate })

	version = "1.2.3"
	commit = "abcdef0"
	date = "2026-08-01"

	if got := getVersion(); got != "1.2.3" {
		t.Errorf("expected ldflags version, got %q", got)
	}
	if got := getCommit(); got != "abcdef0" {
		t.Errorf("expected ldflags commit, got %q", got)
	}
	if got := getDate(); got != "2026-08-01" {
		t.Errorf("expected ldflags date, got %q", got)
	}
}
