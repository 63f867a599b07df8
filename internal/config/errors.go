package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateReport. Callers match them with errors.Is.
var (
	// ErrNoSeeds is returned when a crawl has no seed titles.
	ErrNoSeeds = errors.New("no seeds specified: provide one or more page titles")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Use 0 for an unlimited crawl.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidLanguage is returned when the language is not a Wikipedia edition code.
	ErrInvalidLanguage = errors.New("invalid language: expected a code such as \"en\" or \"pt-br\"")

	// ErrInvalidAPIURL is returned when the API URL is not an absolute http(s) URL.
	ErrInvalidAPIURL = errors.New("invalid API URL: must be an absolute http or https URL")

	// ErrConflictingProxy is returned when both --tor and --proxy are given.
	ErrConflictingProxy = errors.New("conflicting proxies: --tor and --proxy cannot be used together")

	// ErrEmptyName is returned when the network name is blank.
	ErrEmptyName = errors.New("invalid name: must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidTopCategories is returned when --top is negative.
	ErrInvalidTopCategories = errors.New("invalid top categories: must be non-negative")
)
