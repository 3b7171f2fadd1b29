package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/churnikov/otvetgrab/internal/database"
	"github.com/churnikov/otvetgrab/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Frontier", "`[" + strconv.FormatInt(summary.FromID, 10) + ", " + strconv.FormatInt(summary.ToID, 10) + ")`"},
			{"Candidates", strconv.FormatInt(summary.Total(), 10)},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", summary.Elapsed.String()},
		},
	})
	md.PlainText("")

	md.H2("Outcomes")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Committed", strconv.Itoa(summary.Committed)},
			{"Skipped (not found)", strconv.Itoa(summary.SkippedNotFound)},
			{"Skipped (invalid)", strconv.Itoa(summary.SkippedInvalid)},
			{"Skipped (failed)", strconv.Itoa(summary.SkippedFailed)},
			{"**Total resolved**", "**" + strconv.Itoa(summary.Resolved()) + "**"},
		},
	})
	md.PlainText("")

	if summary.Resolved() > 0 {
		w.writeOutcomeChart(md, summary)
	}

	w.writeAlert(md, summary)

	return len(md.String()), md.Build()
}

// writeOutcomeChart writes a mermaid pie chart of outcome distribution.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, summary *model.CrawlSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if summary.Committed > 0 {
		chart.LabelAndIntValue("Committed", uint64(summary.Committed))
	}
	if summary.SkippedNotFound > 0 {
		chart.LabelAndIntValue("Not found", uint64(summary.SkippedNotFound))
	}
	if summary.SkippedInvalid > 0 {
		chart.LabelAndIntValue("Invalid", uint64(summary.SkippedInvalid))
	}
	if summary.SkippedFailed > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.SkippedFailed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert highlights conditions that need operator attention.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.CrawlSummary) {
	switch {
	case summary.LookupMisses > 0:
		md.Warningf(
			"%d taxonomy lookup miss(es): item pages referenced category labels absent from the stored taxonomy. Re-run the taxonomy build.",
			summary.LookupMisses,
		)
	case summary.SkippedFailed > 0:
		md.Importantf(
			"%d id(s) failed after exhausting retries. They were not committed and will be re-crawled on the next run.",
			summary.SkippedFailed,
		)
	case summary.Total() == 0:
		md.Note("The frontier was empty: the store is already current with the source.")
	default:
		md.Tip("All candidate ids resolved cleanly.")
	}
	md.PlainText("")
}

// WriteStats outputs store statistics in Markdown format.
func (w *MarkdownWriter) WriteStats(stats *database.Stats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Store Status")
	md.PlainText("")

	watermark := "none"
	if stats.HasQuestions {
		watermark = strconv.FormatInt(stats.MaxQuestionID, 10)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Categories", strconv.Itoa(stats.Categories)},
			{"Subcategories", strconv.Itoa(stats.SubCategories)},
			{"Questions", strconv.Itoa(stats.Questions)},
			{"Answers", strconv.Itoa(stats.Answers)},
			{"Watermark", watermark},
		},
	})
	md.PlainText("")

	if len(stats.PerCategory) > 0 {
		md.H2("Questions per Category")
		md.PlainText("")

		rows := make([][]string, len(stats.PerCategory))
		for i, c := range stats.PerCategory {
			rows[i] = []string{c.Name, strconv.Itoa(c.Questions)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Questions"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}
