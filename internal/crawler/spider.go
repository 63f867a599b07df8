package crawler

import (
	"context"
	"log/slog"

	"github.com/nao1215/wikigraph/internal/model"
	"github.com/nao1215/wikigraph/internal/wiki"
)

// DefaultMaxPages is the page limit used when none is configured.
const DefaultMaxPages = 500

// Spider drives the explorer over a queue, one title at a time.
//
// We call it "Spider" rather than "Crawler" to keep crawler.NewSpider()
// distinct from the package name.
type Spider struct {
	explorer *Explorer

	// maxPages stops an outer crawl once the network holds this many
	// pages. 0 means no limit.
	maxPages int

	logger *slog.Logger

	// progress is called after every visit.
	progress func(*model.Session)
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the maximum number of pages an outer crawl records.
// 0 disables the limit.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithSpiderLogger sets the logger used by the spider and its explorer.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithProgress registers fn to be called after every visit.
// fn must not modify the session.
func WithProgress(fn func(*model.Session)) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// NewSpider creates a Spider that fetches through fetcher.
func NewSpider(fetcher wiki.Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.explorer = NewExplorer(fetcher, WithExplorerLogger(s.logger))
	return s
}

// Explorer returns the explorer used by the spider.
func (s *Spider) Explorer() *Explorer {
	return s.explorer
}

// Crawl explores outward from seeds until the queue drains or the page
// limit is reached.
//
// If ctx is cancelled the partial session is returned with Interrupted
// set, together with ctx.Err().
func (s *Spider) Crawl(ctx context.Context, seeds []string) (*model.Session, error) {
	session := model.NewSession(ModeOuter.String(), seeds)
	s.logger.Info("crawl started", "seeds", len(seeds), "max_pages", s.maxPages)

	err := s.run(ctx, session, ModeOuter, nil, s.maxPages)
	s.logFinished(session)
	return session, err
}

// Inner re-explores a fixed set of titles in inner mode.
// The resulting network holds the titles that still resolve, with links
// restricted to the set. No new titles are discovered.
func (s *Spider) Inner(ctx context.Context, titles []string) (*model.Session, error) {
	allNodes := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		allNodes[t] = struct{}{}
	}

	session := model.NewSession(ModeInner.String(), titles)
	s.logger.Info("inner pass started", "nodes", len(allNodes))

	err := s.run(ctx, session, ModeInner, allNodes, 0)
	s.logFinished(session)
	return session, err
}

// run pops and explores until the queue is empty, limit pages exist or
// ctx is done.
func (s *Spider) run(ctx context.Context, session *model.Session, mode Mode, allNodes map[string]struct{}, limit int) error {
	defer session.Finish()

	for session.Queue.Len() > 0 {
		if limit > 0 && session.Network.Len() >= limit {
			s.logger.Info("page limit reached", "pages", session.Network.Len())
			return nil
		}
		if err := ctx.Err(); err != nil {
			session.Interrupted = true
			return err
		}

		title, _ := session.Queue.Pop()
		v := s.explorer.Visit(ctx, title, session.Network, mode, allNodes)

		// A fetch cut short by cancellation is not a failure of the
		// title; put it back so it shows up as pending.
		if v.Outcome == OutcomeFetchFailed && ctx.Err() != nil {
			session.Queue.PushFront(title)
			session.Interrupted = true
			return ctx.Err()
		}

		s.explorer.apply(v, session.Network, session.Queue)
		record(&session.Stats, v)

		if s.progress != nil {
			s.progress(session)
		}
	}
	return nil
}

// record updates stats for one visit.
func record(stats *model.Stats, v Visit) {
	stats.Visited++
	stats.EnqueuedTitles += len(v.Enqueue)

	switch v.Outcome {
	case OutcomeAlreadyVisited:
		stats.AlreadyVisited++
	case OutcomeAlias:
		stats.Aliases++
	case OutcomeInserted:
		stats.Inserted++
	case OutcomeDisambiguation:
		stats.Disambiguations++
	case OutcomeDisambiguationDropped:
		stats.Dropped++
	case OutcomeMissing:
		stats.Missing++
	case OutcomeRedirectUnresolved:
		stats.RedirectErrors++
	case OutcomeFetchFailed:
		stats.FetchFailures++
	}
}

func (s *Spider) logFinished(session *model.Session) {
	s.logger.Info("crawl finished",
		"mode", session.Mode,
		"pages", session.Network.Len(),
		"edges", session.Network.EdgeCount(),
		"visited", session.Stats.Visited,
		"pending", len(session.Pending),
		"interrupted", session.Interrupted,
		"duration", session.Duration(),
	)
}
