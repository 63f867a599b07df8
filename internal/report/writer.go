package report

import (
	"io"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/wikigraph/internal/community"
	"github.com/nao1215/wikigraph/internal/model"
)

// Writer defines the interface for report output.
// Implementations write community reports and crawl summaries in
// various formats.
type Writer interface {
	// Write outputs a community report.
	// Returns the number of bytes written and any error encountered.
	Write(report *CommunityReport) (int, error)

	// WriteSession outputs the summary of one crawl session.
	WriteSession(summary *SessionSummary) (int, error)
}

// CommunityReport is the per-community category breakdown of a network.
type CommunityReport struct {
	// Network names the network the report was built from.
	Network string `json:"network"`

	// Pages is the number of nodes in the network.
	Pages int `json:"pages"`

	// Links is the number of recorded links.
	Links int `json:"links"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Communities holds one entry per label, in label order.
	Communities []community.Community `json:"communities"`
}

// NewCommunityReport builds a report for network from summary.
func NewCommunityReport(name string, network *model.Network, summary *community.Summary) *CommunityReport {
	return &CommunityReport{
		Network:     name,
		Pages:       network.Len(),
		Links:       network.EdgeCount(),
		GeneratedAt: time.Now(),
		Communities: summary.Communities,
	}
}

// SessionSummary is what a crawl session looks like to a reader.
// It leaves the network itself out.
type SessionSummary struct {
	Name        string        `json:"name"`
	Mode        string        `json:"mode"`
	Seeds       []string      `json:"seeds"`
	Pages       int           `json:"pages"`
	Links       int           `json:"links"`
	Pending     int           `json:"pending"`
	Interrupted bool          `json:"interrupted"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Stats       model.Stats   `json:"stats"`
}

// NewSessionSummary summarizes s.
func NewSessionSummary(s *model.Session) *SessionSummary {
	return &SessionSummary{
		Name:        s.Name,
		Mode:        s.Mode,
		Seeds:       s.Seeds,
		Pages:       s.Network.Len(),
		Links:       s.Network.EdgeCount(),
		Pending:     len(s.Pending),
		Interrupted: s.Interrupted,
		StartedAt:   s.StartedAt,
		Duration:    s.Duration(),
		Stats:       s.Stats,
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *CommunityReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSession outputs the session summary to all configured Writers.
func (m *MultiWriter) WriteSession(summary *SessionSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSession(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// heading returns s in title case.
// A Caser keeps state, so each call gets its own.
func heading(s string) string {
	return cases.Title(language.English).String(s)
}

// status describes how a session ended.
func status(s *SessionSummary) string {
	if s.Interrupted {
		return "Interrupted (partial results)"
	}
	return "Complete"
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
