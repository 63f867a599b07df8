// Package model defines the core data structures used throughout wikigraph.
//
// This package contains the following main types:
//   - Node: One crawled article with its outbound links, categories and URL
//   - Network: The page graph, keyed by canonical title, in insertion order
//   - Queue: FIFO of titles waiting to be explored
//   - Partition: Community label assigned to each title
//   - Bag: Category histogram for one community
//   - Session: State and counters of a single crawl run
//
// Models live in their own package because crawler, persist, database,
// community and report all share them.
//
// None of the types in this package are safe for concurrent use. A crawl
// session is owned by exactly one goroutine.
package model
