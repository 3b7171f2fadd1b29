package model

import "testing"

// TestNormalizeLabel verifies that label normalization collapses whitespace
// and folds case, so the same label rendered differently on the root listing
// and on item pages still compares equal.
func TestNormalizeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain label unchanged", "компьютеры и связь", "компьютеры и связь"},
		{"trims surrounding whitespace", "  Наука  ", "наука"},
		{"collapses internal whitespace", "Компьютеры   и\n связь", "компьютеры и связь"},
		{"folds cyrillic case", "ЗОЛОТОЙ ФОНД", "золотой фонд"},
		{"folds latin case", "IT Industry", "it industry"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeLabel(tt.in); got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeLabelEquivalence checks that two renderings of the same label
// normalize to the same key.
func TestNormalizeLabelEquivalence(t *testing.T) {
	t.Parallel()

	a := NormalizeLabel("Компьютеры и связь")
	b := NormalizeLabel("  компьютеры   И  СВЯЗЬ ")
	if a != b {
		t.Errorf("expected equal normalized labels, got %q and %q", a, b)
	}
}

// TestSentinelAnswer verifies the no-answers sentinel row: nil text, owned
// by the given question.
func TestSentinelAnswer(t *testing.T) {
	t.Parallel()

	a := SentinelAnswer(42)
	if a.QuestionID != 42 {
		t.Errorf("expected QuestionID 42, got %d", a.QuestionID)
	}
	if a.Text != nil {
		t.Errorf("expected nil Text, got %q", *a.Text)
	}
}

// TestSkipReasonString verifies the log names of all skip reasons.
func TestSkipReasonString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason SkipReason
		want   string
	}{
		{SkipNotFound, "not-found"},
		{SkipInvalid, "invalid"},
		{SkipFailed, "failed"},
		{SkipReason(99), "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("SkipReason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

// TestCrawlSummary verifies the counter arithmetic of a run summary.
func TestCrawlSummary(t *testing.T) {
	t.Parallel()

	t.Run("total is the frontier size", func(t *testing.T) {
		t.Parallel()
		s := &CrawlSummary{FromID: 42, ToID: 46}
		if s.Total() != 4 {
			t.Errorf("expected Total 4, got %d", s.Total())
		}
	})

	t.Run("total of empty frontier is zero", func(t *testing.T) {
		t.Parallel()
		s := &CrawlSummary{FromID: 46, ToID: 46}
		if s.Total() != 0 {
			t.Errorf("expected Total 0, got %d", s.Total())
		}
	})

	t.Run("total never goes negative", func(t *testing.T) {
		t.Parallel()
		s := &CrawlSummary{FromID: 50, ToID: 46}
		if s.Total() != 0 {
			t.Errorf("expected Total 0, got %d", s.Total())
		}
	})

	t.Run("record routes reasons to counters", func(t *testing.T) {
		t.Parallel()
		s := &CrawlSummary{}
		s.Record(SkipNotFound)
		s.Record(SkipNotFound)
		s.Record(SkipInvalid)
		s.Record(SkipFailed)
		s.Committed = 3

		if s.SkippedNotFound != 2 {
			t.Errorf("expected 2 not-found, got %d", s.SkippedNotFound)
		}
		if s.SkippedInvalid != 1 {
			t.Errorf("expected 1 invalid, got %d", s.SkippedInvalid)
		}
		if s.SkippedFailed != 1 {
			t.Errorf("expected 1 failed, got %d", s.SkippedFailed)
		}
		if s.Resolved() != 7 {
			t.Errorf("expected Resolved 7, got %d", s.Resolved())
		}
	})
}
