// Package config provides configuration structures and utilities for wikigraph.
// It defines the crawl options, the on-disk locations of saved networks and
// the optional .wikigraph YAML file that supplies defaults for CLI flags.
package config
