package wiki

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// categoryPrefix is the namespace prefix of category titles on English
// wikis. Other languages use localized prefixes; StripNamespace handles
// those by cutting at the first colon.
const categoryPrefix = "Category:"

// NormalizeTitle converts a title to the form MediaWiki uses as a page key:
// NFC normalized, underscores as spaces, runs of whitespace collapsed,
// no surrounding whitespace, first letter upper-cased.
//
// The API performs the same normalization; doing it locally lets the
// crawler skip titles it has already stored without a round trip.
func NormalizeTitle(title string) string {
	title = norm.NFC.String(title)
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError {
		return title
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return title
	}
	return string(upper) + title[size:]
}

// StripNamespace removes a namespace prefix such as "Category:" from title.
func StripNamespace(title string) string {
	if strings.HasPrefix(title, categoryPrefix) {
		return strings.TrimPrefix(title, categoryPrefix)
	}
	if i := strings.IndexByte(title, ':'); i > 0 {
		return title[i+1:]
	}
	return title
}
