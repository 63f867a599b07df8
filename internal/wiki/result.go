package wiki

import (
	"context"
	"errors"
)

// Kind identifies which of the four fetch outcomes a Result carries.
type Kind int

const (
	// KindPage means the title resolved to an article.
	KindPage Kind = iota

	// KindDisambiguation means the title is a disambiguation page.
	KindDisambiguation

	// KindMissing means the article does not exist or the title is invalid.
	KindMissing

	// KindRedirectUnresolved means the title is a redirect the API could not
	// resolve to an article (loops, interwiki or special-page targets).
	KindRedirectUnresolved
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindDisambiguation:
		return "disambiguation"
	case KindMissing:
		return "missing"
	case KindRedirectUnresolved:
		return "redirect-unresolved"
	default:
		return "unknown"
	}
}

// Page is a resolved article.
type Page struct {
	// Title is the canonical title after normalization and redirects.
	Title string

	// OriginalTitle is the requested title after normalization, before
	// redirects were followed.
	OriginalTitle string

	// Links are main-namespace link targets in API order.
	Links []string

	// Categories are category names without the "Category:" prefix.
	Categories []string

	// URL is the full article URL.
	URL string
}

// Result is the outcome of fetching one title.
// Page is set only for KindPage; Options only for KindDisambiguation.
type Result struct {
	Kind    Kind
	Page    *Page
	Options []string
}

// PageResult wraps p in a KindPage result.
func PageResult(p *Page) Result {
	return Result{Kind: KindPage, Page: p}
}

// DisambiguationResult returns a KindDisambiguation result.
func DisambiguationResult(options ...string) Result {
	return Result{Kind: KindDisambiguation, Options: options}
}

// MissingResult returns a KindMissing result.
func MissingResult() Result {
	return Result{Kind: KindMissing}
}

// RedirectUnresolvedResult returns a KindRedirectUnresolved result.
func RedirectUnresolvedResult() Result {
	return Result{Kind: KindRedirectUnresolved}
}

// Fetcher retrieves a single title.
type Fetcher interface {
	Fetch(ctx context.Context, title string) (Result, error)
}

// Fetch errors.
var (
	// ErrHTTPStatus is returned when the API answers with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrAPI is returned when the API response carries an error object.
	ErrAPI = errors.New("mediawiki API error")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
