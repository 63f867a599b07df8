// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid pie chart
//
// Two things can be written: a CommunityReport, the category breakdown
// of a partitioned network, and a SessionSummary, the counters of one
// crawl run.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
