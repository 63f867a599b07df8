package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/wikigraph/internal/config"
	"github.com/nao1215/wikigraph/internal/crawler"
	"github.com/nao1215/wikigraph/internal/database"
	"github.com/nao1215/wikigraph/internal/model"
	"github.com/nao1215/wikigraph/internal/persist"
	"github.com/nao1215/wikigraph/internal/wiki"
)

// ErrNoOuterSession is returned by InnerStep when no outer crawl has run.
var ErrNoOuterSession = errors.New("no outer session to re-explore")

// CrawlStep runs the outer crawl from the run's seeds.
// On cancellation the partial session is kept in the run.
type CrawlStep struct {
	spider *crawler.Spider
}

// NewCrawlStep creates a crawl step driven by spider.
func NewCrawlStep(spider *crawler.Spider) *CrawlStep {
	return &CrawlStep{spider: spider}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the outer crawl.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	session, err := s.spider.Crawl(ctx, run.Seeds)
	session.Name = run.Name
	run.Outer = session
	return err
}

// InnerStep re-explores the node set of the outer session in inner mode,
// producing a network whose links stay inside that set.
type InnerStep struct {
	spider *crawler.Spider
}

// NewInnerStep creates an inner step driven by spider.
func NewInnerStep(spider *crawler.Spider) *InnerStep {
	return &InnerStep{spider: spider}
}

// Name returns the step name.
func (s *InnerStep) Name() string {
	return "inner"
}

// Do executes the inner pass.
func (s *InnerStep) Do(ctx context.Context, run *Run) error {
	if run.Outer == nil {
		return ErrNoOuterSession
	}

	session, err := s.spider.Inner(ctx, run.Outer.Network.Titles())
	session.Name = run.Name + config.InnerSuffix
	run.Inner = session
	return err
}

// SaveStep writes every session of the run to the persist store under
// its name.
type SaveStep struct {
	store  *persist.Store
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a save step writing to store.
func NewSaveStep(store *persist.Store, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do saves the sessions.
func (s *SaveStep) Do(_ context.Context, run *Run) error {
	for _, session := range run.Sessions() {
		if err := s.store.Save(session.Name, session); err != nil {
			return fmt.Errorf("failed to save %s: %w", session.Name, err)
		}
		run.Saved = append(run.Saved, session.Name)

		path, _ := s.store.Path(session.Name)
		s.logger.Info("network saved",
			"name", session.Name,
			"path", path,
			"pages", session.Network.Len(),
			"interrupted", session.Interrupted,
		)
	}
	return nil
}

// DBStep stores every session of the run in the SQLite database.
type DBStep struct {
	db     *database.CrawlDB
	logger *slog.Logger
}

// DBStepOption configures a DBStep.
type DBStepOption func(*DBStep)

// WithDBLogger sets a custom logger for the database step.
func WithDBLogger(logger *slog.Logger) DBStepOption {
	return func(s *DBStep) {
		s.logger = logger
	}
}

// NewDBStep creates a database step writing to db.
func NewDBStep(db *database.CrawlDB, opts ...DBStepOption) *DBStep {
	s := &DBStep{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *DBStep) Name() string {
	return "database"
}

// Do saves the sessions.
func (s *DBStep) Do(ctx context.Context, run *Run) error {
	for _, session := range run.Sessions() {
		id, err := s.db.SaveNetwork(ctx, session)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", session.Name, err)
		}
		run.SessionIDs = append(run.SessionIDs, id)
		s.logger.Info("session stored", "name", session.Name, "session_id", id)
	}
	return nil
}

// DefaultPipelineConfig holds the settings used by DefaultPipeline.
type DefaultPipelineConfig struct {
	// MaxPages limits the outer crawl. 0 means unlimited.
	MaxPages int

	// Inner adds the inner pass after the crawl.
	Inner bool

	// Store receives the sessions. Nil skips saving to files.
	Store *persist.Store

	// DB receives the sessions. Nil skips the database.
	DB *database.CrawlDB

	// Progress is called after every visit of both passes.
	Progress func(*model.Session)
}

// DefaultPipelineOption configures DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxPages sets the outer crawl page limit.
func WithPipelineMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPages = maxPages
	}
}

// WithPipelineInner enables or disables the inner pass.
func WithPipelineInner(inner bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Inner = inner
	}
}

// WithPipelineStore saves sessions to store.
func WithPipelineStore(store *persist.Store) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithPipelineDB stores sessions in db.
func WithPipelineDB(db *database.CrawlDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DB = db
	}
}

// WithPipelineProgress registers a per-visit callback.
func WithPipelineProgress(fn func(*model.Session)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Progress = fn
	}
}

// DefaultPipeline builds the standard sequence: crawl, optionally the
// inner pass, then saving to the store and the database as final steps.
func DefaultPipeline(fetcher wiki.Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MaxPages: config.DefaultMaxPages,
		Inner:    true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithSpiderLogger(p.logger),
	}
	if cfg.Progress != nil {
		spiderOpts = append(spiderOpts, crawler.WithProgress(cfg.Progress))
	}
	spider := crawler.NewSpider(fetcher, spiderOpts...)

	p.AddStep(NewCrawlStep(spider))
	if cfg.Inner {
		p.AddStep(NewInnerStep(spider))
	}
	if cfg.Store != nil {
		p.AddFinalStep(NewSaveStep(cfg.Store, WithSaveLogger(p.logger)))
	}
	if cfg.DB != nil {
		p.AddFinalStep(NewDBStep(cfg.DB, WithDBLogger(p.logger)))
	}

	return p
}
