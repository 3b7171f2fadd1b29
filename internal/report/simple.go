package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/churnikov/otvetgrab/internal/database"
	"github.com/churnikov/otvetgrab/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: plain text with ASCII formatting rather than ANSI
// colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether zero-count sections are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show zero-count sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl run summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "CRAWL SUMMARY")

	sb.WriteString(fmt.Sprintf("Frontier:   [%d, %d)\n", summary.FromID, summary.ToID))
	sb.WriteString(fmt.Sprintf("Candidates: %d\n", summary.Total()))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", summary.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")

	w.writeRule(&sb, "OUTCOMES")

	sb.WriteString(fmt.Sprintf("  COMMITTED:  %d\n", summary.Committed))
	sb.WriteString(fmt.Sprintf("  NOT FOUND:  %d\n", summary.SkippedNotFound))
	sb.WriteString(fmt.Sprintf("  INVALID:    %d\n", summary.SkippedInvalid))
	sb.WriteString(fmt.Sprintf("  FAILED:     %d\n", summary.SkippedFailed))
	sb.WriteString("\n")

	if summary.LookupMisses > 0 || w.showEmpty {
		sb.WriteString(fmt.Sprintf("  Taxonomy lookup misses: %d\n", summary.LookupMisses))
		if summary.LookupMisses > 0 {
			sb.WriteString("  (labels seen on item pages but absent from the stored taxonomy;\n")
			sb.WriteString("   consider re-running the taxonomy build)\n")
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteStats outputs store statistics in human-readable format.
func (w *SimpleWriter) WriteStats(stats *database.Stats) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "STORE STATUS")

	sb.WriteString(fmt.Sprintf("Categories:     %d\n", stats.Categories))
	sb.WriteString(fmt.Sprintf("Subcategories:  %d\n", stats.SubCategories))
	sb.WriteString(fmt.Sprintf("Questions:      %d\n", stats.Questions))
	sb.WriteString(fmt.Sprintf("Answers:        %d\n", stats.Answers))
	if stats.HasQuestions {
		sb.WriteString(fmt.Sprintf("Watermark:      %d\n", stats.MaxQuestionID))
	} else {
		sb.WriteString("Watermark:      none (next run starts at id 0)\n")
	}
	sb.WriteString("\n")

	if len(stats.PerCategory) > 0 {
		w.writeRule(&sb, "QUESTIONS PER CATEGORY")
		for _, c := range stats.PerCategory {
			if c.Questions == 0 && !w.showEmpty {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-40s %d\n", c.Name, c.Questions))
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes a double-ruled section banner.
func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeRule writes a single-ruled section header.
func (w *SimpleWriter) writeRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
