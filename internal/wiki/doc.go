// Package wiki fetches articles from a MediaWiki Action API endpoint.
//
// The package exposes a single capability to the crawler: given a title,
// return one of four outcomes.
//
//   - KindPage: the title resolved to an article (redirects already followed)
//   - KindDisambiguation: the title names several articles; Options lists them
//   - KindMissing: no such article, or the title is invalid
//   - KindRedirectUnresolved: the API returned a redirect it could not follow
//
// Outcomes are values, not errors. A non-nil error from Fetch always means a
// transport or protocol failure (HTTP status, malformed JSON, API error object).
//
// # Usage
//
//	client, err := wiki.NewClient(wiki.WithLanguage("en"))
//	res, err := client.Fetch(ctx, "Graph theory")
//	switch res.Kind {
//	case wiki.KindPage:
//	    fmt.Println(res.Page.Title, len(res.Page.Links))
//	case wiki.KindDisambiguation:
//	    fmt.Println(res.Options)
//	}
//
// # Etiquette
//
// Wikimedia requires a descriptive User-Agent with contact information.
// Set one with WithUserAgent. Requests are sequential; the client never
// issues two requests at once.
package wiki
