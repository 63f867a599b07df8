// Package crawler builds the page graph by breadth-first exploration.
//
// # Components
//
//   - Explorer: decides, for one title, what is inserted into the network
//     and what is appended to the queue
//   - Spider: the single-threaded driver loop that pops titles and applies
//     the explorer's decisions
//
// # Modes
//
// An outer crawl records every link of a page and enqueues it.
// Deduplication is lazy: a queued title that is already a network key is
// skipped when it is popped, not when it is pushed.
//
// An inner pass re-explores a fixed node set and keeps only links that
// point inside the set. It never enqueues anything, and disambiguation
// pages are dropped.
//
// # Failures
//
// Missing pages, unresolved redirects and transport errors all drop the
// title. None of them stop the crawl.
//
// # Usage
//
//	spider := crawler.NewSpider(client, crawler.WithMaxPages(200))
//	session, err := spider.Crawl(ctx, []string{"Graph theory"})
//
// Neither type is safe for concurrent use.
package crawler
