package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/wikigraph/internal/community"
)

// ruleWidth is the width of the separator lines.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether communities without categories are shown.
	showEmpty bool

	// verbose adds the per-outcome counters to session summaries.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty communities.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the community report in human-readable format.
func (w *SimpleWriter) Write(report *CommunityReport) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "WIKIGRAPH COMMUNITY REPORT")

	fmt.Fprintf(&sb, "Network:      %s\n", report.Network)
	fmt.Fprintf(&sb, "Pages:        %d\n", report.Pages)
	fmt.Fprintf(&sb, "Links:        %d\n", report.Links)
	fmt.Fprintf(&sb, "Communities:  %d\n", len(report.Communities))
	sb.WriteString("\n")

	for _, c := range report.Communities {
		w.writeCommunity(&sb, c)
	}

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeCommunity writes one community with its top categories.
func (w *SimpleWriter) writeCommunity(sb *strings.Builder, c community.Community) {
	if c.Categories == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s %d (%d pages, %d categories)\n", heading("community"), c.Label, c.Size, c.Categories)
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")

	if len(c.Top) == 0 {
		sb.WriteString("  No categories\n\n")
		return
	}
	for _, cc := range c.Top {
		fmt.Fprintf(sb, "  %5d  %s\n", cc.Count, truncateString(cc.Category, ruleWidth-9))
	}
	sb.WriteString("\n")
}

// WriteSession outputs a crawl session summary.
func (w *SimpleWriter) WriteSession(s *SessionSummary) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "WIKIGRAPH CRAWL SUMMARY")

	if s.Name != "" {
		fmt.Fprintf(&sb, "Name:      %s\n", s.Name)
	}
	fmt.Fprintf(&sb, "Mode:      %s\n", s.Mode)
	fmt.Fprintf(&sb, "Seeds:     %s\n", strings.Join(s.Seeds, ", "))
	fmt.Fprintf(&sb, "Pages:     %d\n", s.Pages)
	fmt.Fprintf(&sb, "Links:     %d\n", s.Links)
	fmt.Fprintf(&sb, "Pending:   %d\n", s.Pending)
	fmt.Fprintf(&sb, "Duration:  %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Status:    %s\n", status(s))
	sb.WriteString("\n")

	if w.verbose {
		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\n")
		sb.WriteString(heading("visit outcomes") + "\n")
		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\n")
		for _, row := range statRows(s) {
			fmt.Fprintf(&sb, "  %-18s %d\n", row.name+":", row.value)
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// statRow is one counter of a session summary.
type statRow struct {
	name  string
	value int
}

// statRows lists the session counters in display order.
func statRows(s *SessionSummary) []statRow {
	return []statRow{
		{"Visited", s.Stats.Visited},
		{"Inserted", s.Stats.Inserted},
		{"Already visited", s.Stats.AlreadyVisited},
		{"Aliases", s.Stats.Aliases},
		{"Disambiguations", s.Stats.Disambiguations},
		{"Dropped", s.Stats.Dropped},
		{"Missing", s.Stats.Missing},
		{"Redirect errors", s.Stats.RedirectErrors},
		{"Fetch failures", s.Stats.FetchFailures},
		{"Enqueued", s.Stats.EnqueuedTitles},
	}
}

// writeBanner writes a centered title between two rules.
func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := (ruleWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}
