// Package community summarizes which categories dominate each community
// of a partitioned page graph.
//
// The partition itself comes from elsewhere (for example a modularity
// optimizer run over an exported network). This package only counts.
package community
