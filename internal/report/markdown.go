package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikigraph/internal/community"
)

// MarkdownWriter outputs reports in Markdown format for documentation
// and sharing. It uses nao1215/markdown for tables and a mermaid pie
// chart of community sizes.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the community report in Markdown format.
func (w *MarkdownWriter) Write(report *CommunityReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(heading("wikigraph community report"))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Network", "`" + report.Network + "`"},
			{"Pages", strconv.Itoa(report.Pages)},
			{"Links", strconv.Itoa(report.Links)},
			{"Communities", strconv.Itoa(len(report.Communities))},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	if len(report.Communities) > 0 {
		w.writePieChart(md, report)
	} else {
		md.Note("The partition assigns no communities.")
		md.PlainText("")
	}

	for _, c := range report.Communities {
		w.writeCommunity(md, c)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of community sizes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *CommunityReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Community"),
		piechart.WithShowData(true),
	)

	for _, c := range report.Communities {
		if c.Size > 0 {
			chart.LabelAndIntValue(fmt.Sprintf("Community %d", c.Label), uint64(c.Size))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeCommunity writes one community section.
func (w *MarkdownWriter) writeCommunity(md *markdown.Markdown, c community.Community) {
	md.H2(fmt.Sprintf("%s %d", heading("community"), c.Label))
	md.PlainText("")
	md.PlainTextf("%d pages, %d distinct categories.", c.Size, c.Categories)
	md.PlainText("")

	if len(c.Top) == 0 {
		md.PlainText("No categories.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(c.Top))
	for i, cc := range c.Top {
		rows[i] = []string{
			escapeCell(truncateString(cc.Category, 80)),
			strconv.Itoa(cc.Count),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteSession outputs a crawl session summary in Markdown format.
func (w *MarkdownWriter) WriteSession(s *SessionSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(heading("wikigraph crawl summary"))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Name", s.Name},
			{"Mode", s.Mode},
			{"Seeds", escapeCell(strings.Join(s.Seeds, ", "))},
			{"Pages", strconv.Itoa(s.Pages)},
			{"Links", strconv.Itoa(s.Links)},
			{"Pending", strconv.Itoa(s.Pending)},
			{"Status", status(s)},
		},
	})
	md.PlainText("")

	if s.Interrupted {
		md.Warningf("The crawl was interrupted with %d titles still queued.", s.Pending)
		md.PlainText("")
	}

	md.H2(heading("visit outcomes"))
	md.PlainText("")
	rows := make([][]string, 0, 10)
	for _, row := range statRows(s) {
		rows = append(rows, []string{row.name, strconv.Itoa(row.value)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikigraph](https://github.com/nao1215/wikigraph)*")
}

// escapeCell keeps pipes in titles from breaking table rows.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
