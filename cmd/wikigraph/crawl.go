package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikigraph/internal/config"
	"github.com/nao1215/wikigraph/internal/database"
	"github.com/nao1215/wikigraph/internal/model"
	"github.com/nao1215/wikigraph/internal/persist"
	"github.com/nao1215/wikigraph/internal/pipeline"
	"github.com/nao1215/wikigraph/internal/report"
	"github.com/nao1215/wikigraph/internal/tor"
	"github.com/nao1215/wikigraph/internal/wiki"
)

// progressInterval is how many visits pass between progress log lines.
const progressInterval = 100

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-title...]",
		Short: "Crawl the link graph outward from seed pages",
		Long: `Crawl fetches each seed page from Wikipedia and follows its links
breadth-first until the page limit is reached or no titles remain.

Redirects are stored under the target page. Disambiguation pages are not
stored; their options are queued instead. Missing pages are skipped.

Unless --inner=false is given, the collected pages are then re-explored and
only the links between them are kept. The outer network is saved as <name>
and the inner network as <name>-inner.

Press Ctrl-C to stop early. The partial network and the titles still in the
queue are saved before exiting.

Examples:
  # Crawl 500 pages around "Graph theory"
  wikigraph crawl "Graph theory"

  # Crawl German Wikipedia without a page limit
  wikigraph crawl --lang de --max-pages 0 Graphentheorie

  # Save under a custom name, skip the inner pass
  wikigraph crawl -n topology --inner=false Topology "Metric space"

  # Route requests through an embedded Tor daemon
  wikigraph crawl --tor "Onion routing"

  # Use a configuration file
  wikigraph crawl -c myconfig.yaml`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Wiki connection flags
	cmd.Flags().String("lang", config.DefaultLanguage,
		"Wikipedia language edition (e.g., en, de, simple)")
	cmd.Flags().String("api-url", "",
		"MediaWiki api.php endpoint (overrides --lang)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each API request")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent to the API")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route requests through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Maximum time to wait for the embedded Tor daemon to bootstrap")

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Stop the outer crawl after this many pages (0 = no limit)")
	cmd.Flags().Bool("inner", true,
		"Re-explore the collected pages keeping only links between them")

	// Storage flags
	cmd.Flags().StringP("name", "n", config.DefaultName,
		"Name the network is saved under")
	cmd.Flags().String("data-dir", "",
		"Directory for saved networks and the database (default: XDG data dir)")
	cmd.Flags().Bool("no-db", false,
		"Do not store sessions in the SQLite database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikigraph in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose, cfg.JSONLog)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, saving partial results...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Tor {
		stop, err := startTor(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	return runCrawl(ctx, cfg, nil, cmd.OutOrStdout(), logger)
}

// startTor launches the embedded Tor daemon and points cfg.Proxy at it.
// The returned function stops the daemon.
func startTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(), error) {
	daemon := tor.NewDaemon(tor.WithStartupTimeout(cfg.TorStartupTimeout))

	logger.Warn("starting embedded Tor daemon, this may take a few minutes...",
		"timeout", cfg.TorStartupTimeout,
	)
	if err := daemon.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start Tor: %w", err)
	}

	addr, err := daemon.ProxyAddr()
	if err != nil {
		_ = daemon.Stop()
		return nil, err
	}
	cfg.Proxy = addr
	logger.Info("embedded Tor daemon ready", "proxy", addr)

	return func() {
		if err := daemon.Stop(); err != nil {
			logger.Warn("failed to stop Tor daemon", "error", err)
		}
	}, nil
}

// buildCrawlConfig creates a Config from cobra command flags and the
// configuration file. Flags given on the command line win over the file.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Language, err = flags.GetString("lang"); err != nil {
		return nil, err
	}
	if cfg.APIURL, err = flags.GetString("api-url"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Tor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.Inner, err = flags.GetBool("inner"); err != nil {
		return nil, err
	}
	if cfg.Name, err = flags.GetString("name"); err != nil {
		return nil, err
	}
	dataDir, err := flags.GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if err := readReportFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getGlobalBool(cmd, "verbose")
	cfg.JSONLog = getGlobalBool(cmd, "json-log")
	cfg.Seeds = args

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readReportFlags reads --json, --markdown and --output.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return nil
}

// applyConfigFile merges the configuration file into cfg.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise a missing file is silently ignored.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file, cmd.Flags().Changed)
	return nil
}

// newFetcher creates the MediaWiki client described by cfg.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*wiki.Client, error) {
	opts := []wiki.Option{
		wiki.WithAPIURL(cfg.APIEndpoint()),
		wiki.WithTimeout(cfg.Timeout),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithLogger(logger),
	}
	if cfg.Proxy != "" {
		opts = append(opts, wiki.WithProxy(cfg.Proxy))
	}
	return wiki.NewClient(opts...)
}

// progressLogger logs a line every progressInterval visits.
func progressLogger(logger *slog.Logger) func(*model.Session) {
	return func(s *model.Session) {
		if s.Stats.Visited%progressInterval != 0 {
			return
		}
		logger.Info("crawl progress",
			"mode", s.Mode,
			"visited", s.Stats.Visited,
			"pages", s.Network.Len(),
			"queued", s.Queue.Len(),
		)
	}
}

// runCrawl runs the crawl pipeline and writes a summary of each session.
// A nil fetcher means the real MediaWiki API.
func runCrawl(ctx context.Context, cfg *config.Config, fetcher wiki.Fetcher, stdout io.Writer, logger *slog.Logger) error {
	if fetcher == nil {
		client, err := newFetcher(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create wiki client: %w", err)
		}
		fetcher = client
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"endpoint", cfg.APIEndpoint(),
		"maxPages", cfg.MaxPages,
		"inner", cfg.Inner,
		"saveToDB", cfg.SaveToDB,
	)

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineMaxPages(cfg.MaxPages),
		pipeline.WithPipelineInner(cfg.Inner),
		pipeline.WithPipelineStore(persist.NewStore(cfg.NetworksDir())),
		pipeline.WithPipelineProgress(progressLogger(logger)),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DataDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		configOpts = append(configOpts, pipeline.WithPipelineDB(db))
	}

	p := pipeline.DefaultPipeline(fetcher, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	run := pipeline.NewRun(cfg.Name, cfg.Seeds)
	runErr := p.Execute(ctx, run)

	reportErr := writeSessionSummaries(cfg, run, stdout)

	if runErr != nil {
		if reportErr != nil {
			logger.Error("report failed", "error", reportErr)
		}
		if run.Interrupted && len(run.Saved) > 0 {
			return fmt.Errorf("crawl interrupted, partial results saved as %v: %w", run.Saved, runErr)
		}
		return runErr
	}
	if reportErr != nil {
		return fmt.Errorf("failed to write summary: %w", reportErr)
	}
	return nil
}

// writeSessionSummaries writes one summary per session of the run.
// JSON output is a single array holding every session.
func writeSessionSummaries(cfg *config.Config, run *pipeline.Run, stdout io.Writer) (err error) {
	sessions := run.Sessions()
	if len(sessions) == 0 {
		return errors.New("no session to report")
	}

	out, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOutput(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if cfg.JSONReport {
		summaries := make([]*report.SessionSummary, 0, len(sessions))
		for _, s := range sessions {
			summaries = append(summaries, report.NewSessionSummary(s))
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteSessions(summaries)
		return err
	}

	writer := newReportWriter(cfg, out, false)
	for _, s := range sessions {
		if _, err := writer.WriteSession(report.NewSessionSummary(s)); err != nil {
			return err
		}
	}

	if !cfg.JSONReport && !cfg.MarkdownReport && len(run.Saved) > 0 {
		fmt.Fprintf(out, "Saved networks: %v (in %s)\n", run.Saved, cfg.NetworksDir())
	}
	return nil
}
