// Package tor starts an embedded Tor daemon so wikigraph can reach the
// MediaWiki API through the Tor network.
//
// The daemon only supplies a SOCKS5 address. The wiki client dials through
// it like any other proxy, so a crawl over Tor behaves exactly like a
// crawl over a plain SOCKS5 proxy apart from latency.
package tor
