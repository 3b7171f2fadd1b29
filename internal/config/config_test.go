package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. This serves as living documentation of the defaults:
// changes to them must be intentional or these tests fail.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BaseURL is the touch site", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://touch.otvet.mail.ru" {
			t.Errorf("expected BaseURL 'https://touch.otvet.mail.ru', got '%s'", cfg.BaseURL)
		}
	})

	t.Run("default LatestPath is /questions/", func(t *testing.T) {
		t.Parallel()
		if cfg.LatestPath != "/questions/" {
			t.Errorf("expected LatestPath '/questions/', got '%s'", cfg.LatestPath)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Delay is 200ms", func(t *testing.T) {
		t.Parallel()
		if cfg.Delay != 200*time.Millisecond {
			t.Errorf("expected Delay to be 200ms, got %v", cfg.Delay)
		}
	})

	t.Run("default Workers is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 4 {
			t.Errorf("expected Workers to be 4, got %d", cfg.Workers)
		}
	})

	t.Run("default retry bounds are 3", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchRetries != 3 {
			t.Errorf("expected FetchRetries to be 3, got %d", cfg.FetchRetries)
		}
		if cfg.PersistRetries != 3 {
			t.Errorf("expected PersistRetries to be 3, got %d", cfg.PersistRetries)
		}
	})

	t.Run("no category allow-list by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.HarvestAll() {
			t.Error("expected HarvestAll to be true with empty Categories")
		}
	})

	t.Run("no crawl range bounds by default", func(t *testing.T) {
		t.Parallel()
		if cfg.FromID != -1 || cfg.ToID != -1 {
			t.Errorf("expected unset range bounds, got FromID=%d ToID=%d", cfg.FromID, cfg.ToID)
		}
	})

	t.Run("default exclusions include navigation labels", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"Золотой фонд":   false,
			"Лидеры":         false,
			"Новости":        false,
			"О проекте":      false,
			"Обратная связь": false,
		}
		for _, e := range cfg.Exclusions {
			if _, ok := want[e]; ok {
				want[e] = true
			}
		}
		for label, found := range want {
			if !found {
				t.Errorf("expected exclusion %q to be present", label)
			}
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case exercises one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid default config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty base URL returns ErrInvalidBaseURL", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.BaseURL = ""
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("expected ErrInvalidBaseURL, got %v", err)
		}
	})

	t.Run("relative base URL returns ErrInvalidBaseURL", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.BaseURL = "/not/absolute"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("expected ErrInvalidBaseURL, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative delay returns ErrInvalidDelay", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Delay = -time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidDelay) {
			t.Errorf("expected ErrInvalidDelay, got %v", err)
		}
	})

	t.Run("zero delay is valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Delay = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero workers returns ErrInvalidWorkers", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Workers = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("negative retries returns ErrInvalidRetries", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.FetchRetries = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRetries) {
			t.Errorf("expected ErrInvalidRetries, got %v", err)
		}
	})

	t.Run("negative max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.MaxBodySize = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("inverted id range returns ErrInvalidIDRange", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.FromID = 100
		cfg.ToID = 50
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidIDRange) {
			t.Errorf("expected ErrInvalidIDRange, got %v", err)
		}
	})

	t.Run("one-sided id bound is valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ToID = 50
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("json and markdown together return ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestHarvestAll verifies the allow-list predicate.
func TestHarvestAll(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if !cfg.HarvestAll() {
		t.Error("expected HarvestAll true with no allow-list")
	}

	cfg.Categories = []string{"Наука и техника"}
	if cfg.HarvestAll() {
		t.Error("expected HarvestAll false with an allow-list")
	}
}

// TestSelectorsMerge verifies that empty selector fields fall back to the
// defaults while explicit overrides win.
func TestSelectorsMerge(t *testing.T) {
	t.Parallel()

	t.Run("zero value merges to defaults", func(t *testing.T) {
		t.Parallel()
		merged := Selectors{}.Merge()
		if merged != DefaultSelectors() {
			t.Errorf("expected defaults, got %+v", merged)
		}
	})

	t.Run("override wins, rest falls back", func(t *testing.T) {
		t.Parallel()
		merged := Selectors{Title: "h2.custom"}.Merge()
		if merged.Title != "h2.custom" {
			t.Errorf("expected overridden Title, got %q", merged.Title)
		}
		if merged.Answer != DefaultSelectors().Answer {
			t.Errorf("expected default Answer, got %q", merged.Answer)
		}
	})
}
