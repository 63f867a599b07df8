package wiki

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseDisambiguationOptions extracts the candidate articles listed on a
// rendered disambiguation page.
//
// Every <li> contributes the target of its first article anchor. List items
// belonging to the table of contents (class "tocsection-*") are skipped, as
// are red links (class "new"), in-page fragments and footnote references.
// The target is the anchor's title attribute, falling back to its text.
// Options are returned once each, in document order.
func ParseDisambiguationOptions(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	options := make([]string, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li && !isTOCItem(n) {
			if a := firstArticleAnchor(n); a != nil {
				if option := anchorTarget(a); option != "" && !seen[option] {
					seen[option] = true
					options = append(options, option)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return options, nil
}

// isTOCItem reports whether li is a table-of-contents entry.
func isTOCItem(li *html.Node) bool {
	return strings.Contains(attr(li, "class"), "tocsection")
}

// firstArticleAnchor returns the first <a> below n in document order that
// links to an existing article.
func firstArticleAnchor(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.A && isArticleLink(c) {
			return c
		}
		if c.Type == html.ElementNode && c.DataAtom == atom.Sup {
			continue
		}
		if found := firstArticleAnchor(c); found != nil {
			return found
		}
	}
	return nil
}

// isArticleLink reports whether a points to an existing article.
func isArticleLink(a *html.Node) bool {
	if strings.HasPrefix(attr(a, "href"), "#") {
		return false
	}
	for _, class := range strings.Fields(attr(a, "class")) {
		if class == "new" {
			return false
		}
	}
	return true
}

// anchorTarget returns the article an anchor points to.
func anchorTarget(a *html.Node) string {
	if title := attr(a, "title"); title != "" {
		return NormalizeTitle(title)
	}
	return NormalizeTitle(textContent(a))
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text nodes below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
