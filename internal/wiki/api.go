package wiki

// Namespace numbers used by the client.
const (
	namespaceMain     = 0
	namespaceCategory = 14
)

// apiResponse is the subset of an action=query / action=parse response
// (formatversion=2) that the client reads.
type apiResponse struct {
	Error    *apiError         `json:"error,omitempty"`
	Continue map[string]string `json:"continue,omitempty"`
	Query    *apiQuery         `json:"query,omitempty"`
	Parse    *apiParse         `json:"parse,omitempty"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type apiQuery struct {
	Normalized []apiMapping  `json:"normalized,omitempty"`
	Redirects  []apiRedirect `json:"redirects,omitempty"`
	Interwiki  []apiMapping  `json:"interwiki,omitempty"`
	Pages      []apiPage     `json:"pages,omitempty"`
}

type apiMapping struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Title string `json:"title,omitempty"`
}

type apiRedirect struct {
	From        string `json:"from"`
	To          string `json:"to"`
	ToFragment  string `json:"tofragment,omitempty"`
	ToInterwiki string `json:"tointerwiki,omitempty"`
}

type apiPage struct {
	PageID     int64             `json:"pageid,omitempty"`
	Namespace  int               `json:"ns"`
	Title      string            `json:"title"`
	Missing    bool              `json:"missing,omitempty"`
	Invalid    bool              `json:"invalid,omitempty"`
	Special    bool              `json:"special,omitempty"`
	Redirect   bool              `json:"redirect,omitempty"`
	FullURL    string            `json:"fullurl,omitempty"`
	PageProps  map[string]string `json:"pageprops,omitempty"`
	Links      []apiLink         `json:"links,omitempty"`
	Categories []apiLink         `json:"categories,omitempty"`
}

type apiLink struct {
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
}

type apiParse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// isDisambiguation reports whether the page carries the disambiguation
// page property set by the Disambiguator extension.
func (p *apiPage) isDisambiguation() bool {
	_, ok := p.PageProps["disambiguation"]
	return ok
}

// resolve follows the normalization and redirect mappings from title
// and returns the title the API ended up at.
func (q *apiQuery) resolve(title string) string {
	for _, m := range q.Normalized {
		if m.From == title {
			title = m.To
			break
		}
	}
	// Redirect chains are reported hop by hop; cap the walk so a
	// malformed response cannot loop forever.
	for hops := 0; hops <= len(q.Redirects); hops++ {
		next := ""
		for _, r := range q.Redirects {
			if r.From == title {
				next = r.To
				break
			}
		}
		if next == "" || next == title {
			break
		}
		title = next
	}
	return title
}

// normalized returns the API-normalized form of title.
func (q *apiQuery) normalized(title string) string {
	for _, m := range q.Normalized {
		if m.From == title {
			return m.To
		}
	}
	return title
}

// page returns the page entry with the given title, or the only
// entry when the response contains exactly one.
func (q *apiQuery) page(title string) *apiPage {
	for i := range q.Pages {
		if q.Pages[i].Title == title {
			return &q.Pages[i]
		}
	}
	if len(q.Pages) == 1 {
		return &q.Pages[0]
	}
	return nil
}

// redirectsToInterwiki reports whether any followed redirect points to
// another wiki.
func (q *apiQuery) redirectsToInterwiki() bool {
	for _, r := range q.Redirects {
		if r.ToInterwiki != "" {
			return true
		}
	}
	return false
}
