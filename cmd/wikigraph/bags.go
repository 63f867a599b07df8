package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/wikigraph/internal/community"
	"github.com/nao1215/wikigraph/internal/config"
	"github.com/nao1215/wikigraph/internal/database"
	"github.com/nao1215/wikigraph/internal/model"
	"github.com/nao1215/wikigraph/internal/persist"
	"github.com/nao1215/wikigraph/internal/report"
)

// ErrInvalidPartition is returned when a partition file is neither a
// title-to-label mapping nor a list of labels.
var ErrInvalidPartition = errors.New("invalid partition: expected a mapping of titles to labels or a list of labels")

// NewBagsCmd creates the bags command.
func NewBagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bags <partition-file>",
		Short: "Summarize the categories of each community in a saved network",
		Long: `Bags loads a saved network and a community partition, and counts for each
community how many of its pages carry each category.

The partition file is JSON or YAML and has one of two shapes:

  # Mapping: page title to community label
  {"Graph theory": 0, "Vertex (graph theory)": 0, "Topology": 1}

  # List: labels aligned with the network's page order
  [0, 0, 1]

Labels must be integers from 0 to k-1, where k is the number of distinct
labels. Every page of the network must have one.

Examples:
  # Summarize the default network
  wikigraph bags communities.json

  # Use the inner network and print the top 5 categories as Markdown
  wikigraph bags -n network-inner --top 5 --markdown communities.yaml

  # Load the network of database session 3 instead of a saved file
  wikigraph bags --session 3 communities.json`,
		Args: cobra.ExactArgs(1),
		RunE: runBagsCmd,
	}

	cmd.Flags().StringP("name", "n", config.DefaultName,
		"Name of the saved network")
	cmd.Flags().Int64P("session", "s", 0,
		"Load the network of this database session instead of a saved file")
	cmd.Flags().String("data-dir", "",
		"Directory for saved networks and the database (default: XDG data dir)")
	cmd.Flags().Int("top", config.DefaultTopCategories,
		"Number of categories listed per community (0 = all)")
	cmd.Flags().Bool("show-empty", false,
		"Also list communities without categories")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// bagsOptions holds the bags command input besides Config.
type bagsOptions struct {
	partitionFile string
	sessionID     int64
	showEmpty     bool
}

// runBagsCmd executes the bags command.
func runBagsCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	opts := bagsOptions{partitionFile: args[0]}

	var err error
	if cfg.Name, err = flags.GetString("name"); err != nil {
		return err
	}
	if opts.sessionID, err = flags.GetInt64("session"); err != nil {
		return err
	}
	dataDir, err := flags.GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.TopCategories, err = flags.GetInt("top"); err != nil {
		return err
	}
	if opts.showEmpty, err = flags.GetBool("show-empty"); err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	cfg.Verbose = getGlobalBool(cmd, "verbose")

	if err := cfg.ValidateReport(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	return runBags(cmd.Context(), cfg, opts, cmd.OutOrStdout())
}

// runBags loads the network and the partition and writes the community report.
func runBags(ctx context.Context, cfg *config.Config, opts bagsOptions, stdout io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	name, network, err := loadNetwork(ctx, cfg, opts.sessionID)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.partitionFile) //nolint:gosec // User-provided partition path is intentional
	if err != nil {
		return fmt.Errorf("failed to read partition file: %w", err)
	}
	partition, err := parsePartition(data, network)
	if err != nil {
		return fmt.Errorf("failed to parse partition file %s: %w", opts.partitionFile, err)
	}

	summary, err := community.Summarize(network, partition, cfg.TopCategories)
	if err != nil {
		return fmt.Errorf("failed to aggregate categories: %w", err)
	}
	communityReport := report.NewCommunityReport(name, network, summary)

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
		_, err = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint()).Write(communityReport)
		return err
	}
	_, err = newReportWriter(cfg, out, opts.showEmpty).Write(communityReport)
	return err
}

// loadNetwork reads the network from the persist store, or from the
// database when sessionID is set. It returns the name to report under.
func loadNetwork(ctx context.Context, cfg *config.Config, sessionID int64) (string, *model.Network, error) {
	if sessionID > 0 {
		db, err := database.Open(cfg.DataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			return "", nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		rec, err := db.GetSession(ctx, sessionID)
		if err != nil {
			return "", nil, err
		}
		network, err := db.LoadNetwork(ctx, sessionID)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s (session %d)", rec.Name, rec.ID), network, nil
	}

	var session model.Session
	if err := persist.NewStore(cfg.NetworksDir()).Load(cfg.Name, &session); err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return "", nil, fmt.Errorf("network %q not found (run 'wikigraph crawl' first or see 'wikigraph list'): %w", cfg.Name, err)
		}
		return "", nil, err
	}
	if session.Network == nil {
		session.Network = model.NewNetwork()
	}
	return cfg.Name, session.Network, nil
}

// parsePartition decodes a partition file. YAML is a superset of JSON, so
// one decoder reads both. A mapping is keyed by title; a sequence is
// aligned with the network's insertion order.
func parsePartition(data []byte, network *model.Network) (model.Partition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrInvalidPartition
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var labels map[string]int
		if err := root.Decode(&labels); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPartition, err)
		}
		return model.NewPartition(labels), nil
	case yaml.SequenceNode:
		var labels []int
		if err := root.Decode(&labels); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPartition, err)
		}
		return model.PartitionFromLabels(network, labels)
	default:
		return nil, ErrInvalidPartition
	}
}
