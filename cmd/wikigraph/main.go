// Package main provides the entry point for the wikigraph CLI.
//
// wikigraph crawls the link graph of Wikipedia starting from seed pages,
// saves the resulting network and summarizes communities by category.
//
// Usage:
//
//	wikigraph crawl "Graph theory" "Topology"
//	wikigraph bags partition.json
//
// See --help for all available options.
package main

// main is the entry point for wikigraph.
func main() {
	Execute()
}
