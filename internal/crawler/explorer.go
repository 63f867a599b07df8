package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/wikigraph/internal/model"
	"github.com/nao1215/wikigraph/internal/wiki"
)

// Mode selects how the explorer records links.
type Mode int

const (
	// ModeOuter records every link and enqueues it for exploration.
	ModeOuter Mode = iota

	// ModeInner restricts links to a fixed node set and enqueues nothing.
	ModeInner
)

// ErrUnknownMode is returned by ParseMode for an unrecognized name.
var ErrUnknownMode = errors.New("unknown crawl mode")

// String returns "outer" or "inner".
func (m Mode) String() string {
	switch m {
	case ModeOuter:
		return "outer"
	case ModeInner:
		return "inner"
	default:
		return "unknown"
	}
}

// ParseMode parses the name returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outer":
		return ModeOuter, nil
	case "inner":
		return ModeInner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Outcome is what happened to one visited title.
type Outcome int

const (
	// OutcomeAlreadyVisited means the title was already a network key.
	OutcomeAlreadyVisited Outcome = iota

	// OutcomeAlias means the title resolved to a canonical title that was
	// already a network key.
	OutcomeAlias

	// OutcomeInserted means a new node was recorded.
	OutcomeInserted

	// OutcomeDisambiguation means the options of a disambiguation page
	// were enqueued.
	OutcomeDisambiguation

	// OutcomeDisambiguationDropped means a disambiguation page was seen in
	// inner mode and ignored.
	OutcomeDisambiguationDropped

	// OutcomeMissing means the page does not exist.
	OutcomeMissing

	// OutcomeRedirectUnresolved means the title is a redirect that could
	// not be resolved to an article.
	OutcomeRedirectUnresolved

	// OutcomeFetchFailed means the fetcher returned a transport error.
	OutcomeFetchFailed
)

var outcomeNames = [...]string{
	OutcomeAlreadyVisited:        "already-visited",
	OutcomeAlias:                 "alias",
	OutcomeInserted:              "inserted",
	OutcomeDisambiguation:        "disambiguation",
	OutcomeDisambiguationDropped: "disambiguation-dropped",
	OutcomeMissing:               "missing",
	OutcomeRedirectUnresolved:    "redirect-unresolved",
	OutcomeFetchFailed:           "fetch-failed",
}

// String returns the kebab-case name of the outcome.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Insert is a node the explorer wants added to the network.
type Insert struct {
	Title string
	Node  *model.Node
}

// Visit is the decision taken for one title.
// Applying it means adding Insert (if any) to the network and appending
// Enqueue to the queue, in that order.
type Visit struct {
	Outcome Outcome
	Enqueue []string
	Insert  *Insert

	// Err is the fetch error behind OutcomeFetchFailed.
	Err error
}

// Explorer fetches one title at a time and decides how it changes the
// network and the queue.
type Explorer struct {
	fetcher wiki.Fetcher
	logger  *slog.Logger
}

// ExplorerOption configures an Explorer.
type ExplorerOption func(*Explorer)

// WithExplorerLogger sets the logger. Defaults to slog.Default().
func WithExplorerLogger(logger *slog.Logger) ExplorerOption {
	return func(e *Explorer) {
		e.logger = logger
	}
}

// NewExplorer creates an Explorer backed by fetcher.
func NewExplorer(fetcher wiki.Fetcher, opts ...ExplorerOption) *Explorer {
	e := &Explorer{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Visit decides what exploring title does to network without changing it.
//
// allNodes is only read in ModeInner. A nil set there means no link
// survives the restriction.
func (e *Explorer) Visit(ctx context.Context, title string, network *model.Network, mode Mode, allNodes map[string]struct{}) Visit {
	if network.Has(title) || network.Has(wiki.NormalizeTitle(title)) {
		return Visit{Outcome: OutcomeAlreadyVisited}
	}

	res, err := e.fetcher.Fetch(ctx, title)
	if err != nil {
		e.logger.Warn("fetch failed", "title", title, "error", err)
		return Visit{Outcome: OutcomeFetchFailed, Err: err}
	}

	switch res.Kind {
	case wiki.KindPage:
		return e.visitPage(title, res.Page, network, mode, allNodes)

	case wiki.KindDisambiguation:
		if mode == ModeInner {
			e.logger.Debug("disambiguation dropped", "title", title)
			return Visit{Outcome: OutcomeDisambiguationDropped}
		}
		e.logger.Info("disambiguation", "title", title, "options", len(res.Options))
		return Visit{
			Outcome: OutcomeDisambiguation,
			Enqueue: append([]string(nil), res.Options...),
		}

	case wiki.KindRedirectUnresolved:
		e.logger.Debug("redirect unresolved", "title", title)
		return Visit{Outcome: OutcomeRedirectUnresolved}

	default:
		e.logger.Debug("page not found", "title", title)
		return Visit{Outcome: OutcomeMissing}
	}
}

func (e *Explorer) visitPage(title string, page *wiki.Page, network *model.Network, mode Mode, allNodes map[string]struct{}) Visit {
	if page == nil {
		return Visit{Outcome: OutcomeMissing}
	}

	canonical := page.Title
	if canonical == "" {
		canonical = wiki.NormalizeTitle(title)
	}
	if network.Has(canonical) {
		e.logger.Debug("alias of known page", "title", title, "canonical", canonical)
		return Visit{Outcome: OutcomeAlias}
	}

	node := &model.Node{
		Categories: append([]string{}, page.Categories...),
		URL:        page.URL,
	}

	var enqueue []string
	if mode == ModeInner {
		node.Links = restrict(page.Links, allNodes)
	} else {
		node.Links = append([]string{}, page.Links...)
		enqueue = append([]string(nil), page.Links...)
	}

	e.logger.Debug("page recorded", "title", canonical, "links", len(node.Links), "categories", len(node.Categories))

	return Visit{
		Outcome: OutcomeInserted,
		Enqueue: enqueue,
		Insert:  &Insert{Title: canonical, Node: node},
	}
}

// restrict keeps the links that are members of allNodes.
// Each title appears once, at its first position in links.
func restrict(links []string, allNodes map[string]struct{}) []string {
	out := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		if _, ok := allNodes[l]; !ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Explore visits title and applies the decision to network and queue.
func (e *Explorer) Explore(ctx context.Context, title string, network *model.Network, queue *model.Queue, mode Mode, allNodes map[string]struct{}) Outcome {
	return e.apply(e.Visit(ctx, title, network, mode, allNodes), network, queue)
}

func (e *Explorer) apply(v Visit, network *model.Network, queue *model.Queue) Outcome {
	if v.Insert != nil {
		network.Add(v.Insert.Title, v.Insert.Node)
	}
	if len(v.Enqueue) > 0 {
		queue.Push(v.Enqueue...)
	}
	return v.Outcome
}
