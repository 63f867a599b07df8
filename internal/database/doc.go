// Package database provides SQLite-based storage for wikigraph.
//
// This package implements the CrawlDB, which stores:
//   - One row per crawl session with its seeds and counters
//   - The pages of each session's network, in insertion order
//   - Outbound links and category tags of every page
//
// The persist package keeps the latest network per name as a single file;
// the database keeps every session, so networks can be queried and
// compared with SQL.
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, and the
// whole database is one file, wikigraph.db, in the data directory.
package database
